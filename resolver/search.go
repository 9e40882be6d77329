package resolver

import (
	"context"
	"errors"

	"bennypowers.dev/csslens/color"
	"bennypowers.dev/csslens/documents"
	"bennypowers.dev/csslens/internal/log"
	"bennypowers.dev/csslens/internal/observability"
)

// searchWorkspace looks for a resolvable definition of name in other
// workspace files. Candidates are processed in fixed-size batches with
// a cooperative pause between batches, oversized files are skipped,
// and the first file with a resolvable definition wins. Positive and
// negative outcomes are both cached under "name:originURI"; the file
// list itself is cached with its own TTL so repeated lookups do not
// re-enumerate the filesystem.
func (r *Resolver) searchWorkspace(ctx context.Context, name string, doc *documents.Document) (*color.Value, error) {
	key := name + ":" + doc.URI()
	if out, ok := r.resolutions.Get(key); ok {
		r.cacheHits.Add(1)
		observability.CacheEventsTotal.WithLabelValues("resolution", observability.EventHit).Inc()
		if out.value == nil {
			return nil, NewNotFoundError(name, doc.URI())
		}
		return out.value, nil
	}
	r.cacheMiss.Add(1)
	observability.CacheEventsTotal.WithLabelValues("resolution", observability.EventMiss).Inc()

	uris, err := r.workspaceFiles(ctx)
	if err != nil {
		return nil, err
	}

	r.scans.Add(1)
	observability.WorkspaceScansTotal.Inc()

	kind := kindOf(name)
	batch := r.settings.SearchBatchSize
	for start := 0; start < len(uris); start += batch {
		if err := r.yield(ctx, "workspace search"); err != nil {
			return nil, err
		}
		end := min(start+batch, len(uris))
		for _, uri := range uris[start:end] {
			if uri == doc.URI() {
				continue
			}
			if size, err := r.opener.Size(uri); err != nil || size > r.settings.MaxFileBytes {
				continue
			}
			candidate, err := r.opener.Open(uri)
			if err != nil {
				log.Debug("skipping %s: %s", uri, err)
				continue
			}
			v, err := r.resolveLocal(name, candidate, kind)
			if err != nil {
				continue
			}
			r.resolutions.Put(key, resolution{value: v})
			return v, nil
		}
	}

	r.resolutions.Put(key, resolution{})
	return nil, NewNotFoundError(name, doc.URI())
}

// workspaceFiles enumerates candidate style files under its own, short
// timeout and caches the list.
func (r *Resolver) workspaceFiles(ctx context.Context) ([]string, error) {
	key := r.enum.Root()
	if uris, ok := r.fileLists.Get(key); ok {
		observability.CacheEventsTotal.WithLabelValues("file-list", observability.EventHit).Inc()
		return uris, nil
	}
	observability.CacheEventsTotal.WithLabelValues("file-list", observability.EventMiss).Inc()

	fctx, cancel := context.WithTimeout(ctx, r.settings.FileListTimeout)
	defer cancel()

	uris, err := r.enum.FindFiles(fctx, r.settings.MaxSearchFiles)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			observability.TimeoutsTotal.WithLabelValues("file-list").Inc()
			return nil, NewPerformanceTimeoutError("file enumeration", r.settings.FileListTimeout)
		}
		return nil, err
	}
	r.fileLists.Put(key, uris)
	return uris, nil
}
