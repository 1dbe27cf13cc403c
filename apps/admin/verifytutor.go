package main

import (
	"context"
	"time"
)

func (cli *commandLine) verifyTutor(id string, verified bool) error {
	ctx := context.Background()
	tp, err := cli.tutRepo.GetTutorProfileByID(ctx, id)
	if err != nil {
		return err
	}
	tp.UpdatedAt = time.Now().UTC()
	if _, err := cli.tutRepo.UpdateTutorProfile(ctx, tp, &verified); err != nil {
		return err
	}
	return nil
}
