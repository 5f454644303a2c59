package secret

// SetCloseHookForTesting installs fn to observe every buffer's contents
// right after it is zeroed on Close. Returns a function restoring the
// previous hook. Tests only.
func SetCloseHookForTesting(fn func(data []byte)) func() {
	original := closeHook
	closeHook = fn
	return func() { closeHook = original }
}
