// Package scheduler drives the externally owned Cloud Scheduler jobs
// that re-invoke booking reconciliation. One job per booking, named
// after the booking id.
package scheduler

import (
	"context"
	"fmt"

	"ridesync/internal/config"

	"github.com/rs/zerolog"
	"google.golang.org/api/cloudscheduler/v1"
	"google.golang.org/api/option"
)

type JobClient struct {
	svc       *cloudscheduler.Service
	projectID string
	location  string
	logger    *zerolog.Logger
}

func NewJobClient(ctx context.Context, cfg config.GoogleConfig, logger *zerolog.Logger) (*JobClient, error) {
	opts := []option.ClientOption{
		option.WithScopes(cloudscheduler.CloudPlatformScope),
	}
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	svc, err := cloudscheduler.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create cloud scheduler service: %w", err)
	}

	return &JobClient{
		svc:       svc,
		projectID: cfg.ProjectID,
		location:  cfg.Location,
		logger:    logger,
	}, nil
}

func (c *JobClient) jobName(bookingID string) string {
	return fmt.Sprintf("projects/%s/locations/%s/jobs/%s", c.projectID, c.location, bookingID)
}

// UpdateJob patches only the schedule field of the booking's job.
func (c *JobClient) UpdateJob(ctx context.Context, bookingID, schedule string) error {
	name := c.jobName(bookingID)

	job, err := c.svc.Projects.Locations.Jobs.Get(name).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("get scheduler job %s: %w", name, err)
	}

	job.Schedule = schedule
	_, err = c.svc.Projects.Locations.Jobs.Patch(name, job).
		UpdateMask("schedule").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("patch scheduler job %s: %w", name, err)
	}

	c.logger.Info().Str("job", name).Str("schedule", schedule).Msg("Scheduler job updated")
	return nil
}

// DeleteJob removes the booking's job so it stops re-triggering.
func (c *JobClient) DeleteJob(ctx context.Context, bookingID string) error {
	name := c.jobName(bookingID)

	if _, err := c.svc.Projects.Locations.Jobs.Get(name).Context(ctx).Do(); err != nil {
		return fmt.Errorf("get scheduler job %s: %w", name, err)
	}

	if _, err := c.svc.Projects.Locations.Jobs.Delete(name).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete scheduler job %s: %w", name, err)
	}

	c.logger.Info().Str("job", name).Msg("Scheduler job deleted")
	return nil
}
