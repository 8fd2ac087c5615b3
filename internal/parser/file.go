package parser

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/rmgil/go-poker-metrics/internal/boundary"
	"github.com/rmgil/go-poker-metrics/internal/model"
)

// FileResult summarizes one input file's parse pass.
type FileResult struct {
	FileID string
	Site   model.Site
	Hands  int
	Errors []model.ParseErr
}

// ParseFile detects hand spans in the file and parses them in source order,
// invoking emit for each hand as it is produced so callers can stream
// results instead of materializing the whole file. Per-hand failures are
// logged and collected; they never abort the rest of the file. A file with
// no detectable hands is a valid empty result.
//
// Cancellation is file-granular: when ctx is done the file is abandoned and
// reported failed rather than partially counted.
func ParseFile(ctx context.Context, path string, hint model.Site, emit func(h *model.Hand, rawSpan string) error) (*FileResult, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	res := &FileResult{FileID: path, Site: hint}
	spans := boundary.Detect(string(buf))
	if len(spans) == 0 {
		slog.Info("no hands detected", "file", path)
		return res, nil
	}
	if res.Site == "" || res.Site == model.SiteOther {
		res.Site = DetectSite(spans[0].Text)
	}

	p := ForSite(res.Site)
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		h, perr := p.ParseHand(span.Text, path, span.Start)
		if perr != nil {
			var pe *model.ParseErr
			if ok := asParseErr(perr, &pe); ok {
				slog.Warn("hand skipped", "file", pe.FileID, "offset", pe.Offset, "reason", pe.Reason)
				res.Errors = append(res.Errors, *pe)
				continue
			}
			return nil, perr
		}
		if err := emit(h, span.Text); err != nil {
			return nil, fmt.Errorf("emit hand from %s: %w", path, err)
		}
		res.Hands++
	}
	return res, nil
}

func asParseErr(err error, target **model.ParseErr) bool {
	pe, ok := err.(*model.ParseErr)
	if ok {
		*target = pe
	}
	return ok
}
