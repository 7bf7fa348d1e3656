package reporting

import (
	"context"
	"maps"
	"time"
)

type reportingMetaContextKey struct{}

// ReportingMeta is attached to every error reported during a request
type ReportingMeta struct {
	tags     map[string]string
	extras   map[string]string
	playerID string
	// When the request reached the reporting middleware
	startedAt time.Time
}

func (m ReportingMeta) clone() ReportingMeta {
	tags := make(map[string]string, len(m.tags))
	maps.Copy(tags, m.tags)
	extras := make(map[string]string, len(m.extras))
	maps.Copy(extras, m.extras)

	return ReportingMeta{
		tags:      tags,
		extras:    extras,
		playerID:  m.playerID,
		startedAt: m.startedAt,
	}
}

// MetaFromContext returns a copy of the meta in ctx that is safe to modify
func MetaFromContext(ctx context.Context) ReportingMeta {
	meta, _ := ctx.Value(reportingMetaContextKey{}).(ReportingMeta)
	return meta.clone()
}

func updateMeta(ctx context.Context, update func(meta *ReportingMeta)) context.Context {
	meta := MetaFromContext(ctx)
	update(&meta)
	return context.WithValue(ctx, reportingMetaContextKey{}, meta)
}

func setStartedAtInContext(ctx context.Context, startedAt time.Time) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		meta.startedAt = startedAt
	})
}

func AddExtrasToContext(ctx context.Context, extras map[string]string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.extras, extras)
	})
}

func AddTagsToContext(ctx context.Context, tags map[string]string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.tags, tags)
	})
}

// SetPlayerIDInContext reports errors as affecting the given player
func SetPlayerIDInContext(ctx context.Context, playerID string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		meta.playerID = playerID
	})
}
