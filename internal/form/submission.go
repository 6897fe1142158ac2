package form

import "context"

// Outcome is the result of one submission.
type Outcome struct {
	Result string
	Err    error

	// Discarded is true when the form was cleared before the request
	// finished, so the outcome was not applied.
	Discarded bool
}

// Submission is a handle on one in-flight generation request.
type Submission struct {
	// ID correlates the submission with request logs and the
	// X-Request-ID header.
	ID string

	// Input is the form input captured when the submission started.
	Input Input

	cancel  context.CancelFunc
	done    chan struct{}
	outcome Outcome
}

// Done is closed once the outcome is known.
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the outcome is known and returns it.
func (s *Submission) Wait() Outcome {
	<-s.done
	return s.outcome
}

func (s *Submission) finish(o Outcome) {
	s.outcome = o
	close(s.done)
}

type submissionIDKey struct{}

// ContextWithSubmissionID attaches a submission ID to ctx.
func ContextWithSubmissionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, submissionIDKey{}, id)
}

// SubmissionID returns the submission ID stored in ctx, or "".
func SubmissionID(ctx context.Context) string {
	id, _ := ctx.Value(submissionIDKey{}).(string)
	return id
}
