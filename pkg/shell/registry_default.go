package shell

// NewDefaultRegistry builds the command table the SSH session handler
// dispatches against, wiring every handler named in SPEC_FULL.md §4.2.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(pwdHandler{}, "pwd")
	r.Register(whoamiHandler{}, "whoami")
	r.Register(idHandler{}, "id")
	r.Register(sudoHandler{}, "sudo")
	r.Register(catHandler{}, "cat")
	r.Register(echoHandler{}, "echo")
	r.Register(dateHandler{}, "date")
	r.Register(unameHandler{}, "uname")
	r.Register(lsHandler{}, "ls")
	r.Register(psHandler{}, "ps")
	r.Register(freeHandler{}, "free")
	r.Register(exitHandler{}, "exit", "logout")
	r.Register(missingURLHandler{name: "wget"}, "wget")
	r.Register(missingURLHandler{name: "curl"}, "curl")

	r.RegisterStateful(cdHandler{}, "cd")

	return r
}
