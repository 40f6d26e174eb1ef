package github

import (
	"context"
	stderrors "errors"
	"net/http"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/rohankatakam/devpairs/internal/errors"
	"github.com/rohankatakam/devpairs/internal/models"
)

// FetchCommits pages through the repository's commits and fetches each
// commit's file list. maxCommits <= 0 means no cap.
//
// Failures are best-effort: a failed detail fetch drops that commit, and a
// failed list request stops pagination. Both are logged and the commits
// gathered so far are returned with an error wrapping
// models.ErrPartialHistory. Context cancellation returns the context error.
func (c *Client) FetchCommits(ctx context.Context, repo models.Repository, maxCommits int) ([]models.CommitRecord, error) {
	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{
			PerPage: c.perPage,
		},
	}

	log := c.logger.WithField("repository", repo.FullName())
	commits := make([]models.CommitRecord, 0)
	var (
		listFailed bool
		dropped    int
	)

	for {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return commits, err
		}

		page, resp, err := c.client.Repositories.ListCommits(ctx, repo.Owner, repo.Name, opts)
		if err != nil {
			if ctx.Err() != nil {
				return commits, ctx.Err()
			}
			log.WithError(classify(err, "list commits")).
				WithField("page", opts.Page).
				Warn("Failed to retrieve commits, stopping pagination")
			listFailed = true
			break
		}
		c.recorder.PageFetched()
		c.logRateLimit(resp)

		if maxCommits > 0 && len(commits)+len(page) > maxCommits {
			page = page[:maxCommits-len(commits)]
		}

		details, err := c.fetchDetails(ctx, repo, page)
		commits = append(commits, details...)
		if err != nil {
			return commits, err
		}
		dropped += len(page) - len(details)

		log.WithFields(logrus.Fields{
			"page":    opts.Page,
			"fetched": len(details),
			"total":   len(commits),
		}).Debug("Fetched commit page")

		if resp.NextPage == 0 || (maxCommits > 0 && len(commits) >= maxCommits) {
			break
		}
		opts.Page = resp.NextPage
	}

	if listFailed || dropped > 0 {
		return commits, errors.ExternalErrorf(models.ErrPartialHistory, "fetch commits for %s", repo.FullName()).
			WithContext("fetched", len(commits)).
			WithContext("dropped", dropped).
			WithContext("pagination_stopped", listFailed)
	}

	return commits, nil
}

// fetchDetails fetches the full commit (with files) for every listed commit
// using a bounded pool. Records are returned in completion order.
func (c *Client) fetchDetails(ctx context.Context, repo models.Repository, page []*github.RepositoryCommit) ([]models.CommitRecord, error) {
	if len(page) == 0 {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxWorkers)
	results := make(chan models.CommitRecord, len(page))

	for _, listed := range page {
		sha := listed.GetSHA()
		g.Go(func() error {
			if err := c.rateLimiter.Wait(gctx); err != nil {
				return err
			}

			start := time.Now()
			detail, _, err := c.client.Repositories.GetCommit(gctx, repo.Owner, repo.Name, sha, nil)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				c.recorder.CommitFailed()
				c.logger.WithError(classify(err, "get commit")).WithFields(logrus.Fields{
					"repository": repo.FullName(),
					"sha":        sha,
				}).Warn("Failed to retrieve commit, skipping")
				return nil
			}
			c.recorder.CommitFetched(time.Since(start))

			results <- toRecord(detail)
			return nil
		})
	}

	err := g.Wait()
	close(results)

	records := make([]models.CommitRecord, 0, len(page))
	for record := range results {
		records = append(records, record)
	}

	return records, err
}

func toRecord(rc *github.RepositoryCommit) models.CommitRecord {
	author := rc.GetCommit().GetAuthor()

	files := make([]string, 0, len(rc.Files))
	for _, f := range rc.Files {
		files = append(files, f.GetFilename())
	}

	return models.CommitRecord{
		SHA:       rc.GetSHA(),
		Author:    author.GetName(),
		Email:     author.GetEmail(),
		Timestamp: author.GetDate().Time,
		Files:     files,
	}
}

// classify tags a go-github error as external (GitHub answered with a
// failure status) or network (no usable answer).
func classify(err error, op string) error {
	var (
		respErr  *github.ErrorResponse
		rateErr  *github.RateLimitError
		abuseErr *github.AbuseRateLimitError
	)

	switch {
	case stderrors.As(err, &rateErr), stderrors.As(err, &abuseErr):
		return errors.ExternalError(err, op+": rate limited")
	case stderrors.As(err, &respErr):
		status := 0
		if respErr.Response != nil {
			status = respErr.Response.StatusCode
		}
		return errors.ExternalErrorf(err, "%s: %d %s", op, status, http.StatusText(status))
	default:
		return errors.NetworkError(err, op)
	}
}
