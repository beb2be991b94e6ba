package shell

// exitHandler produces no shell output; the session layer detects "exit"
// and "logout" by name before dispatch and closes the channel, matching
// a real shell's behavior of terminating without printing anything itself.
type exitHandler struct{}

func (exitHandler) Execute(_ string, _ *Context) string {
	return ""
}

// IsDisconnectCommand reports whether name should end the session, checked
// by the SSH session handler ahead of Dispatcher.Execute.
func IsDisconnectCommand(name string) bool {
	return name == "exit" || name == "logout"
}
