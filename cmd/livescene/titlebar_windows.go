//go:build windows

package main

import (
	"syscall"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	dwmapi                    = syscall.NewLazyDLL("dwmapi.dll")
	procDwmSetWindowAttribute = dwmapi.NewProc("DwmSetWindowAttribute")
)

const (
	dwmwaBorderColor  = 34
	dwmwaCaptionColor = 35
)

// tintTitleBar paints the caption and border with the sky color (Windows 11).
func tintTitleBar(window *glfw.Window, c mgl32.Vec3) {
	hwnd := window.GetWin32Window()
	if hwnd == nil {
		return
	}
	// COLORREF is 0x00BBGGRR
	ref := uint32(channel(c[0])) | uint32(channel(c[1]))<<8 | uint32(channel(c[2]))<<16
	for _, attr := range []uintptr{dwmwaBorderColor, dwmwaCaptionColor} {
		procDwmSetWindowAttribute.Call(
			uintptr(unsafe.Pointer(hwnd)),
			attr,
			uintptr(unsafe.Pointer(&ref)),
			unsafe.Sizeof(ref),
		)
	}
}

func channel(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}
