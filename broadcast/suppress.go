package broadcast

// Suppress disables delivery from src to this instance. The current handler
// is captured into the suppression map and dispatch skips the subscription
// until Resume restores it. Suppressing a source that is not a declared
// subscription, or one already suppressed, is a suppression fault.
func (c *CheckInstance) Suppress(src *SourceType) error {
	if !c.typ.SubscribesTo(src) {
		return &SuppressionError{Check: c.typ.name, Source: src.name, Reason: "cannot suppress, not a subscription"}
	}
	if _, ok := c.suppressed[src]; ok {
		return &SuppressionError{Check: c.typ.name, Source: src.name, Reason: "already suppressed"}
	}

	// Capturing forces resolution, so a missing handler surfaces here the
	// same way it would at dispatch.
	h, err := c.handler(src, primarySignal)
	if err != nil {
		return err
	}
	c.suppressed[src] = h
	delete(c.handlers, handlerKey{src: src, signal: primarySignal})
	return nil
}

// Resume restores delivery from src, previously disabled with Suppress.
// Resuming a source that is not a declared subscription, or one not
// currently suppressed, is a suppression fault.
func (c *CheckInstance) Resume(src *SourceType) error {
	if !c.typ.SubscribesTo(src) {
		return &SuppressionError{Check: c.typ.name, Source: src.name, Reason: "cannot resume, not a subscription"}
	}
	h, ok := c.suppressed[src]
	if !ok {
		return &SuppressionError{Check: c.typ.name, Source: src.name, Reason: "not currently suppressed"}
	}
	c.handlers[handlerKey{src: src, signal: primarySignal}] = h
	delete(c.suppressed, src)
	return nil
}

// SuppressAll suppresses every declared subscription, in declaration order.
func (c *CheckInstance) SuppressAll() error {
	for _, src := range c.typ.subscribes {
		if err := c.Suppress(src); err != nil {
			return err
		}
	}
	return nil
}

// ResumeAll resumes every declared subscription, in declaration order.
func (c *CheckInstance) ResumeAll() error {
	for _, src := range c.typ.subscribes {
		if err := c.Resume(src); err != nil {
			return err
		}
	}
	return nil
}

// Suppressed reports whether delivery from src is currently suppressed.
func (c *CheckInstance) Suppressed(src *SourceType) bool {
	return c.isSuppressed(src)
}

func (c *CheckInstance) isSuppressed(src *SourceType) bool {
	_, ok := c.suppressed[src]
	return ok
}
