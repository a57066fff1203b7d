//go:build !windows

package main

func logMonitorConfiguration() {}
