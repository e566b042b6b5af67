package utils

// PanicIfNeeded aborts handler execution on error; the recovery middleware
// translates the panic into an error envelope.
func PanicIfNeeded(err any, message ...string) {
	if err != nil {
		if len(message) > 0 {
			panic(message[0])
		}
		panic(err)
	}
}
