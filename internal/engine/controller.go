package engine

// Action is a discrete input command as produced by the key mapping
// layer.
type Action int

const (
	ActionMoveLeft Action = iota
	ActionMoveRight
	ActionRotateCW
	ActionRotateCCW
	ActionSoftDropStart
	ActionSoftDropEnd
	ActionHardDrop
)

// Controller translates input actions into engine commands. It holds
// no game state beyond the soft-drop flag, which lives in the engine
// itself.
type Controller struct {
	engine *Engine
}

func NewController(engine *Engine) *Controller {
	return &Controller{engine: engine}
}

// Apply dispatches one action. Rejected moves and rotations are normal
// gameplay, not errors; the result carries what the UI needs for
// feedback.
func (c *Controller) Apply(action Action) StepResult {
	switch action {
	case ActionMoveLeft:
		c.engine.MoveLeft()
	case ActionMoveRight:
		c.engine.MoveRight()
	case ActionRotateCW:
		c.engine.RotateCW()
	case ActionRotateCCW:
		c.engine.RotateCCW()
	case ActionSoftDropStart:
		c.engine.SetSoftDrop(true)
	case ActionSoftDropEnd:
		c.engine.SetSoftDrop(false)
	case ActionHardDrop:
		return c.engine.HardDrop()
	}
	return StepResult{}
}

// SoftDropActive reports whether soft drop is currently held.
func (c *Controller) SoftDropActive() bool {
	return c.engine.SoftDropActive()
}
