// +build windows

package main

// ReapZombie is a no-op on windows
func ReapZombie() {
}
