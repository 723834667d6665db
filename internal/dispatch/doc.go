// Package dispatch asks GitHub to run the data update workflow by sending a
// repository_dispatch event.
package dispatch
