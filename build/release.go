// +build !debug

package build

// DEBUG is false in standard builds. Build with the 'debug' tag to enable
// panics on critical errors instead of just logging them.
const DEBUG = false
