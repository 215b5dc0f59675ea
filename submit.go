package main

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Puzzle parts, sent as the "level" form field.
const (
	partCrossings = 1
	partRock      = 2
)

// errIncorrect indicates the site rejected a submitted answer.
var errIncorrect = errors.New("submitted answer was incorrect")

// submit posts answer for part and reports the verdict.
func submit(ctx context.Context, cfg *appConfig, configPath string, log *logger, part int, answer string) error {
	log.infof("submitting: year=%d day=%d part=%d answer=%s", cfg.Year, cfg.Day, part, answer)

	var sub *submitResponse
	err := withSession(ctx, cfg, configPath, log, func(c *apiClient) error {
		var serr error
		sub, serr = submitWithRetry(ctx, c, log, cfg.Year, cfg.Day, part, answer)
		return serr
	})
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}

	switch sub.Verdict {
	case verdictCorrect:
		log.ok("correct: that's the right answer")
		return nil
	case verdictAlreadySolved:
		log.warn("already solved: the site did not check this answer")
		return nil
	case verdictIncorrect:
		log.warnf("incorrect: %s", sub.Message)
		return errIncorrect
	default:
		log.warnf("unrecognized submit response: %s", sub.Message)
		return nil
	}
}

func submitWithRetry(ctx context.Context, client *apiClient, log *logger, year, day, part int, answer string) (*submitResponse, error) {
	backoff := 2 * time.Second
	for {
		var sub *submitResponse
		err := newSpinner().track("submitting answer", func() error {
			var serr error
			sub, serr = client.submitAnswer(ctx, year, day, part, answer)
			return serr
		})
		if err != nil {
			var ae *apiError
			if errors.As(err, &ae) && ae.StatusCode == 429 {
				log.warnf("submit rate limited (429), waiting %s...", backoff.Round(100*time.Millisecond))
				if err := sleepCtx(ctx, backoff); err != nil {
					return nil, err
				}
				if backoff < 30*time.Second {
					backoff *= 2
				}
				continue
			}
			return nil, err
		}
		if sub.Verdict != verdictRateLimited {
			return sub, nil
		}

		wait := sub.Wait
		if wait <= 0 {
			wait = backoff
		}
		wait += time.Second
		log.warnf("answered too recently, waiting %s...", wait.Round(time.Second))
		if err := sleepCtx(ctx, wait); err != nil {
			return nil, err
		}
	}
}
