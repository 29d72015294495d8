package lifecycle

// Confirmer asks the user yes/no questions.
type Confirmer interface {
	// Interactive reports whether a human can answer.
	Interactive() bool
	Confirm(prompt string) (bool, error)
}

// confirm applies the destructive-action policy: an explicit yes proceeds,
// a non-interactive session without yes fails, otherwise the user decides.
func confirm(c Confirmer, yes bool, prompt string) error {
	if yes {
		return nil
	}
	if c == nil || !c.Interactive() {
		return &Error{
			Err:  ErrConfirmationRequired,
			Msg:  "refusing to continue without confirmation in a non-interactive session",
			Hint: "pass --yes to confirm",
		}
	}
	ok, err := c.Confirm(prompt)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}
