package pipeline

import (
	"context"

	errs "github.com/taloscope/taloscope/pkg/errors"
	"github.com/taloscope/taloscope/pkg/resource"
)

// Load decodes a resource file. Documents that fail to parse are logged and
// skipped; a file that cannot be read or is not a resource document at all
// is an error.
func (r *Runner) Load(path string) (resource.Collections, []string, error) {
	c, err := resource.ReadFile(path)
	if err == nil {
		return c, nil, nil
	}
	if !onlyResourceErrors(err) {
		return resource.Collections{}, nil, err
	}
	var skipped []string
	for _, e := range errs.Split(err) {
		skipped = append(skipped, errs.UserMessage(e))
		r.Logger.Warn("skipped resource", "path", path, "err", e)
	}
	return c, skipped, nil
}

func onlyResourceErrors(err error) bool {
	for _, e := range errs.Split(err) {
		if errs.GetCode(e) != errs.ErrCodeInvalidResource {
			return false
		}
	}
	return true
}

// RunFile loads path and runs the pipeline over it. Skipped documents are
// reported in Result.Rejected alongside resources the builder refused.
func (r *Runner) RunFile(ctx context.Context, path string) (*Result, error) {
	c, skipped, err := r.Load(path)
	if err != nil {
		return nil, err
	}
	res, err := r.Run(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(skipped) > 0 {
		out := *res
		out.Rejected = append(append([]string{}, skipped...), res.Rejected...)
		return &out, nil
	}
	return res, nil
}
