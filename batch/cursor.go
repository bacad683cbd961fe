package batch

// Cursor is iteration state over a Batch's command list (spec §3,
// CommandListCursor): the current command index, plus an intra-command
// sub-position for creators that emit more than one protocol command per
// logical command. The creators in this package write one protocol
// command per logical command (a prepared command is a single
// COM_STMT_EXECUTE) and never advance the sub-position. It is restartable
// only for a from-scratch retry, and is never exposed outside this
// package.
type Cursor struct {
	commands []*BatchCommand
	index    int
	sub      int
}

// newCursor returns a Cursor positioned at the start of commands.
func newCursor(commands []*BatchCommand) *Cursor {
	return &Cursor{commands: commands}
}

// Reset restarts iteration from the beginning, for a full retry of a
// failed write_query call. Mid-batch failures otherwise leave the cursor
// partial, per spec §9 ("the cursor may be left partial because the
// batch is considered failed").
func (c *Cursor) Reset() {
	c.index = 0
	c.sub = 0
}

// Done reports whether every command has been consumed.
func (c *Cursor) Done() bool {
	return c.index >= len(c.commands)
}

// Current returns the command at the cursor's current index, or nil if
// Done.
func (c *Cursor) Current() *BatchCommand {
	if c.Done() {
		return nil
	}
	return c.commands[c.index]
}

// Sub returns the intra-command sub-position, reset to 0 whenever Advance
// moves to a new command.
func (c *Cursor) Sub() int {
	return c.sub
}

// AdvanceSub moves within the current command without consuming it,
// for creators that write more than one protocol command per logical
// command.
func (c *Cursor) AdvanceSub() {
	c.sub++
}

// Advance consumes the current command and moves to the next one,
// resetting the sub-position.
func (c *Cursor) Advance() {
	c.index++
	c.sub = 0
}

// Remaining returns the number of commands not yet consumed, including
// the current one.
func (c *Cursor) Remaining() int {
	if c.Done() {
		return 0
	}
	return len(c.commands) - c.index
}
