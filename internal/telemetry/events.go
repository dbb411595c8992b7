package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const eventsTracer = "yatube/events"

// TraceFeed opens a span around building one page of a feed.
func TraceFeed(ctx context.Context, feed string, page int) (context.Context, trace.Span) {
	return otel.Tracer(eventsTracer).Start(ctx, "feed.get",
		trace.WithAttributes(
			attribute.String("feed.type", feed),
			attribute.Int("feed.page", page),
		),
	)
}

// TracePostWrite opens a span for creating ("create") or editing ("edit") a post.
func TracePostWrite(ctx context.Context, action string, authorID uint) (context.Context, trace.Span) {
	return otel.Tracer(eventsTracer).Start(ctx, "post."+action,
		trace.WithAttributes(attribute.Int64("post.author_id", int64(authorID))),
	)
}

// TraceComment opens a span for adding a comment.
func TraceComment(ctx context.Context, postID uint) (context.Context, trace.Span) {
	return otel.Tracer(eventsTracer).Start(ctx, "comment.create",
		trace.WithAttributes(attribute.Int64("post.id", int64(postID))),
	)
}

// TraceFollow opens a span for a follow or unfollow.
func TraceFollow(ctx context.Context, action string, userID uint, author string) (context.Context, trace.Span) {
	return otel.Tracer(eventsTracer).Start(ctx, "social."+action,
		trace.WithAttributes(
			attribute.Int64("user.id", int64(userID)),
			attribute.String("author.username", author),
		),
	)
}

// EndSpan records err, if any, and ends span.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
