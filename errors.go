package helix

import "github.com/rotisserie/eris"

var (
	ErrWorldShutDown         = eris.New("world is shut down")
	ErrWorldRunning          = eris.New("components must be registered before the world starts running")
	ErrDuplicateSystem       = eris.New("system is already registered in this schedule")
	ErrUnknownSystem         = eris.New("ordering constraint names an unknown system or set")
	ErrScheduleCycle         = eris.New("schedule contains an ordering cycle")
	ErrRestrictedContext     = eris.New("structural change attempted from a restricted context; queue it on Commands instead")
	ErrResourceNotFound      = eris.New("resource not found")
	ErrResourceMustBePointer = eris.New("resources must be inserted as pointers")
)
