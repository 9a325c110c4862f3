//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the testbed with the GLFW host.
func (Build) Glfw() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/unify", "."), withStream())
	return err
}

// Builds the testbed with the ebiten host.
func (Build) Ebiten() error {
	_, err := executeCmd("go", withArgs("build", "-tags", "ebiten", "-o", "bin/unify-ebiten", "."), withStream())
	return err
}

// Runs the engine packages tests. The window hosts need cgo and are skipped.
func Test() error {
	pkgs, err := enginePackages()
	if err != nil {
		return err
	}
	_, err = executeCmd("go", withArgs(append([]string{"test", "-race"}, pkgs...)...), withStream())
	return err
}
