package form

// Input is the user-editable part of the form.
type Input struct {
	EmailContent string
	Tone         Tone
}

// DefaultInput returns the field values of a fresh form.
func DefaultInput() Input {
	return Input{Tone: DefaultTone}
}

// Field is a single field edit. The concrete types EmailContent and
// ToneField are the only implementations.
type Field interface {
	// Name returns the wire name of the field ("emailContent" or "tone").
	Name() string

	apply(in *Input) error
}

// EmailContent replaces the pasted email text.
type EmailContent string

// Name implements Field
func (EmailContent) Name() string { return "emailContent" }

func (f EmailContent) apply(in *Input) error {
	in.EmailContent = string(f)
	return nil
}

// ToneField replaces the selected tone.
type ToneField Tone

// Name implements Field
func (ToneField) Name() string { return "tone" }

func (f ToneField) apply(in *Input) error {
	t := Tone(f)
	if !t.Valid() {
		return ErrInvalidTone
	}
	in.Tone = t
	return nil
}
