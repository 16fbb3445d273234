package build

import (
	"fmt"
	"os"
)

// Critical will print a message to os.Stderr and, if DEBUG has been set,
// then panic with the same message.
func Critical(v ...interface{}) {
	s := fmt.Sprintln(v...)
	os.Stderr.WriteString(s)
	if DEBUG {
		panic(s)
	}
}
