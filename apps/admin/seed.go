package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/tkalearning/lms/core/course"
)

// catalog is the initial course list.
var catalog = []course.Course{
	{
		Title:       "Introduction to Photography",
		Description: "Learn the basics of photography, including composition, lighting, and camera settings.",
	},
	{
		Title:       "Video Production Basics",
		Description: "An introductory course on video production, covering filming techniques, editing, and more.",
	},
	{
		Title:       "Advanced Canva Design",
		Description: "Master advanced design techniques using Canva to create stunning graphics and presentations.",
	},
	{
		Title:       "Robotics for beginners",
		Description: "Get started with robotics, learning about basic concepts.",
	},
	{
		Title:       "Introduction to Machine Learning",
		Description: "Understand the fundamentals of machine learning, including algorithms and applications.",
	},
}

func (cli *commandLine) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the initial course catalog, if the catalog is empty",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			n, err := cli.seed(context.Background())
			if err != nil {
				return err
			}
			cli.printf("inserted %d courses\n", n)
			return nil
		},
	}
}

func (cli *commandLine) seed(ctx context.Context) (int, error) {
	existing, err := cli.crsRepo.QueryCourses(ctx, nil, nil)
	if err != nil {
		return 0, errors.Wrap(err, "querying courses")
	}
	if len(existing) > 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	for _, crs := range catalog {
		crs.Category = course.DefaultCategory
		crs.CreatedAt = now
		if _, err = cli.crsRepo.CreateCourse(ctx, crs); err != nil {
			return 0, errors.Wrap(err, "inserting course")
		}
	}
	return len(catalog), nil
}
