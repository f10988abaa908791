//go:build !linux

package cluster

func setProcTitlePlatform(string) {}
