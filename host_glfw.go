//go:build !ebiten

package main

import _ "github.com/spaghettifunk/unify/engine/platform/glfwhost"

const defaultHost = "glfw"
