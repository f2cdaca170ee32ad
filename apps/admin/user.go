package main

import (
	"context"

	"github.com/spf13/cobra"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update an existing one. The password is prompted.",
		Args:  cobra.NoArgs,
	}
	uname := usernameFlag(cmd, "the user's username")
	email := cmd.Flags().StringP("email", "e", "", "the user's email")
	isAdmin := cmd.Flags().Bool("admin", false, "grant admin rights")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := requireUsername(cmd, *uname); err != nil {
			return err
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			_ = cmd.Usage()
			return errHelp
		}
		usr, err := cli.usrSvc.AddOrUpdate(context.Background(), *uname, *email, pwd, *isAdmin)
		if err != nil {
			return err
		}
		cli.printf("user %q saved (id %d, admin %t)\n", usr.Username, usr.ID, usr.IsAdmin)
		return nil
	}
	return cmd
}

func (cli *commandLine) makeAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "makeadmin",
		Short: "Grant, or with --revoke remove, admin rights",
		Args:  cobra.NoArgs,
	}
	uname := usernameFlag(cmd, "the user's username")
	revoke := cmd.Flags().Bool("revoke", false, "remove admin rights instead")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := requireUsername(cmd, *uname); err != nil {
			return err
		}
		usr, err := cli.usrSvc.SetAdmin(context.Background(), *uname, !*revoke)
		if err != nil {
			return err
		}
		if usr.IsAdmin {
			cli.printf("%s is now an admin\n", usr.Username)
		} else {
			cli.printf("%s is no longer an admin\n", usr.Username)
		}
		return nil
	}
	return cmd
}

func (cli *commandLine) resetPasswordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resetpassword",
		Short: "Reset a user's password. The password is prompted.",
		Args:  cobra.NoArgs,
	}
	uname := usernameFlag(cmd, "the user's username or email")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		if err := requireUsername(cmd, *uname); err != nil {
			return err
		}
		pwd, err := cli.promptPassword()
		if err != nil {
			return err
		}
		if pwd == "" {
			_ = cmd.Usage()
			return errHelp
		}
		_, err = cli.usrSvc.SetPassword(context.Background(), *uname, pwd)
		return err
	}
	return cmd
}
