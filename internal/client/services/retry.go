package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/moodnotes/internal/client/api"
	"github.com/dmitrijs2005/moodnotes/internal/client/connectivity"
	"github.com/dmitrijs2005/moodnotes/internal/client/models"
	"github.com/dmitrijs2005/moodnotes/internal/client/repositories/pending"
	"github.com/dmitrijs2005/moodnotes/internal/common"
	"github.com/dmitrijs2005/moodnotes/internal/logging"
	"github.com/sethvargo/go-retry"
)

const (
	drainBaseDelay  = 500 * time.Millisecond
	drainMaxRetries = 3
)

// Drainer replays the pending-operation ledger once connectivity is back.
// Each row is retried with exponential backoff; rows that cannot ever
// succeed (a vanished local file) are dropped.
type Drainer struct {
	client  api.Client
	ledger  pending.Repository
	status  func() connectivity.Status
	logger  logging.Logger
	backoff func() retry.Backoff
}

func NewDrainer(client api.Client, ledger pending.Repository, status func() connectivity.Status, l logging.Logger) *Drainer {
	return &Drainer{
		client:  client,
		ledger:  ledger,
		status:  status,
		logger:  l.With("module", "drainer"),
		backoff: defaultBackoff,
	}
}

func defaultBackoff() retry.Backoff {
	return retry.WithMaxRetries(drainMaxRetries, retry.NewExponential(drainBaseDelay))
}

// Drain replays all ledger rows. It returns ErrorNoConnection without
// touching the ledger when the server is unreachable.
func (d *Drainer) Drain(ctx context.Context) error {

	if !d.status().Online() {
		return common.ErrorNoConnection
	}

	if err := d.drainUploads(ctx); err != nil {
		return err
	}
	return d.drainDeletes(ctx)
}

func (d *Drainer) drainUploads(ctx context.Context) error {

	rows, err := d.ledger.ListUploads(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		if err := d.retryUpload(ctx, row); err != nil {
			d.logger.Warn(ctx, "Upload retry failed, keeping ledger row",
				"path", row.RemoteImagePath, "error", err.Error())
			continue
		}
		if err := d.ledger.RemoveUpload(ctx, row.RemoteImagePath); err != nil {
			return err
		}
	}
	return nil
}

func (d *Drainer) retryUpload(ctx context.Context, row *models.PendingUpload) error {

	// probe first so a vanished source file drops the row instead of
	// burning retries
	probe, err := openLocalFile(row.ImageURI)
	if err != nil {
		d.logger.Warn(ctx, "Dropping upload with missing local file",
			"path", row.RemoteImagePath, "uri", row.ImageURI)
		return d.ledger.RemoveUpload(ctx, row.RemoteImagePath)
	}
	probe.Close()

	return retry.Do(ctx, d.backoff(), func(ctx context.Context) error {
		url, err := d.client.PresignUploadPath(ctx, row.RemoteImagePath)
		if err != nil {
			return retryable(err)
		}

		// keep the row's transfer handle current in case this attempt is
		// interrupted mid-upload
		if serr := d.ledger.SetSessionURI(ctx, row.RemoteImagePath, url); serr != nil {
			d.logger.Warn(ctx, "Failed to record transfer handle",
				"path", row.RemoteImagePath, "error", serr.Error())
		}

		// reopen per attempt so every try uploads the full file
		f, err := openLocalFile(row.ImageURI)
		if err != nil {
			return err
		}
		defer f.Close()

		if err := d.client.UploadImage(ctx, url, f, contentTypeForURI(row.RemoteImagePath)); err != nil {
			return retryable(err)
		}
		return nil
	})
}

func (d *Drainer) drainDeletes(ctx context.Context) error {

	rows, err := d.ledger.ListDeletes(ctx)
	if err != nil {
		return err
	}

	for _, row := range rows {
		err := retry.Do(ctx, d.backoff(), func(ctx context.Context) error {
			err := d.client.DeleteImage(ctx, row.RemoteImagePath)
			// an already-gone object is a success
			if err != nil && !errors.Is(err, common.ErrorNotFound) {
				return retryable(err)
			}
			return nil
		})
		if err != nil {
			d.logger.Warn(ctx, "Delete retry failed, keeping ledger row",
				"path", row.RemoteImagePath, "error", err.Error())
			continue
		}
		if err := d.ledger.RemoveDelete(ctx, row.RemoteImagePath); err != nil {
			return err
		}
	}
	return nil
}

// retryable marks transient failures for another attempt; authentication
// problems abort the whole drain.
func retryable(err error) error {
	if errors.Is(err, common.ErrorUnauthenticated) {
		return err
	}
	return retry.RetryableError(err)
}

// Run drains whenever connectivity becomes available, then waits for the
// next transition.
func (d *Drainer) Run(ctx context.Context, transitions <-chan connectivity.Status) {
	for {
		select {
		case status, ok := <-transitions:
			if !ok {
				return
			}
			if !status.Online() {
				continue
			}
			if err := d.Drain(ctx); err != nil && !errors.Is(err, common.ErrorNoConnection) {
				d.logger.Error(ctx, "Ledger drain failed", "error", err.Error())
			}
		case <-ctx.Done():
			return
		}
	}
}
