// +build debug

package build

// DEBUG is true when the binary is built with the 'debug' tag. Critical will
// panic instead of merely logging when DEBUG is set.
const DEBUG = true
