// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package ingest wraps segment admission into the TCP reassembler with an
// optional byte-rate limit, for deployments tapping a link faster than the
// downstream decode pipeline can drain.
package ingest

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/resonance-meter/combat-core/internal/capture"
)

// maxBurstSize caps the token-bucket burst at 256KB, the same burst ceiling
// the teacher's writer-side throttle uses.
const maxBurstSize = 256 * 1024

// ThrottledFlow admits TCP segments into a capture.Reassembler at no more
// than bytesPerSec bytes/second.
type ThrottledFlow struct {
	reassembler *capture.Reassembler
	limiter     *rate.Limiter
	ctx         context.Context
}

// NewThrottledFlow wraps reassembler with a token-bucket limiter. If
// bytesPerSec <= 0, admission is unthrottled.
func NewThrottledFlow(ctx context.Context, reassembler *capture.Reassembler, bytesPerSec int64) *ThrottledFlow {
	var limiter *rate.Limiter
	if bytesPerSec > 0 {
		burst := int(bytesPerSec)
		if burst > maxBurstSize {
			burst = maxBurstSize
		}
		limiter = rate.NewLimiter(rate.Limit(bytesPerSec), burst)
	}

	return &ThrottledFlow{reassembler: reassembler, limiter: limiter, ctx: ctx}
}

// Insert admits a segment, blocking to respect the configured rate before
// handing it to the wrapped Reassembler. Splits payloads larger than the
// limiter's burst into chunks so large segments don't require an
// oversized token reservation.
func (t *ThrottledFlow) Insert(sequenceNumber uint32, payload []byte) ([]byte, bool, error) {
	if t.limiter == nil {
		return firstResult(t.reassembler.Insert(sequenceNumber, payload))
	}

	var drained []byte
	got := false
	seq := sequenceNumber
	remaining := payload

	for len(remaining) > 0 {
		chunk := len(remaining)
		if chunk > t.limiter.Burst() {
			chunk = t.limiter.Burst()
		}

		if err := t.limiter.WaitN(t.ctx, chunk); err != nil {
			return drained, got, err
		}

		out, ok := t.reassembler.Insert(seq, remaining[:chunk])
		if ok {
			drained = append(drained, out...)
			got = true
		}

		seq += uint32(chunk)
		remaining = remaining[chunk:]
	}

	return drained, got, nil
}

func firstResult(drained []byte, ok bool) ([]byte, bool, error) {
	return drained, ok, nil
}

// Reassembler exposes the wrapped reassembler, e.g. for Reset after a
// detected capture restart.
func (t *ThrottledFlow) Reassembler() *capture.Reassembler {
	return t.reassembler
}
