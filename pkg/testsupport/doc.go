// Package testsupport provides fixtures and scripted widget controls shared by
// package tests.
package testsupport
