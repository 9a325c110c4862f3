//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed in a GLFW window.
func (Run) Demo() error {
	fmt.Println("Run testbed...")
	_, err := executeCmd("go", withArgs("run", ".", "-host", "glfw"), withStream())
	return err
}

// Runs the testbed without a window, reporting load progress in the terminal.
func (Run) Headless() error {
	fmt.Println("Run testbed headless...")
	_, err := executeCmd("go", withArgs("run", ".", "-host", "headless"), withStream())
	return err
}
