//go:build !unix

// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package httpcore

// maskSIGPIPE is a no-op on platforms without SIGPIPE (e.g. Windows, wasm).
func maskSIGPIPE() (restore func()) {
	return func() {}
}
