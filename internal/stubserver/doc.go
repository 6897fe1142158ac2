// Package stubserver implements a local stand-in for the reply-generation
// service.
//
// It speaks the same contract as the real service: POST a JSON body with
// emailContent and tone to the configured path, get the reply back as
// plain text, or a non-2xx status with a plain-text message. Replies are
// canned and keyed by tone; no text generation happens here.
//
// The server exists for development and demos: point the form at it,
// add latency to watch the submitting state, or force a failure status
// to see how errors render.
//
// # Usage Example
//
//	srv := stubserver.New(&stubserver.Config{
//	    Port:      8080,
//	    Latency:   2 * time.Second,
//	    Advertise: true, // visible to "emailreply scan"
//	})
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// # Error Bodies
//
//   - 400 "Email content required" for blank content
//   - 400 "Invalid tone" for a tone outside formal/professional/casual/friendly
//   - 400 "Invalid request body" for malformed JSON
//   - FailStatus with FailMessage when failure injection is on
package stubserver
