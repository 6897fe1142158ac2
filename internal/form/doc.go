// Package form implements the session controller behind the reply form.
//
// A Controller owns the mutable view state of a single form session: the
// email content and tone entered by the user, the submission phase, the
// generated reply or error message, and the transient "copied" indicator.
// Renderers (the TUI, the generate command) never mutate this state
// directly; they call the controller's operations and read State snapshots.
//
// # Submission Lifecycle
//
// The controller is a small state machine:
//
//	Idle ──Submit──▶ Submitting ──success──▶ Succeeded
//	                     │
//	                     └──────failure────▶ Failed
//
//	Succeeded/Failed ──Submit──▶ Submitting
//	any phase ──Clear──▶ Idle
//
// Submit is rejected with ErrSubmitInProgress while a submission is in
// flight. Clear during a submission cancels the request and the late
// outcome is discarded, so a cleared form never shows a stale reply.
//
// # Collaborators
//
// The controller talks to three external services through interfaces:
//   - Generator: produces the reply (see internal/replyapi)
//   - Clipboard: receives the copied reply (see internal/clipboard)
//   - Scheduler: fires the copied-indicator revert (time.AfterFunc by default)
//
// # Usage Example
//
//	ctrl := form.New(replyapi.NewClient(endpoint),
//	    form.WithClipboard(clipboard.System{}),
//	)
//	_ = ctrl.UpdateField(form.EmailContent("Hi, can we reschedule?"))
//	_ = ctrl.UpdateField(form.ToneField(form.ToneFriendly))
//
//	sub, err := ctrl.Submit(ctx)
//	if err != nil {
//	    return err
//	}
//	sub.Wait()
//	fmt.Println(ctrl.State().Result)
//
// # Thread Safety
//
// All Controller methods are safe for concurrent use. Submission outcomes
// and indicator reverts arrive on background goroutines and are applied
// under the controller's mutex; Updates delivers the resulting snapshots.
package form
