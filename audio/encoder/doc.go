// Package encoder wraps an external transcoder such as ffmpeg. The binary is
// resolved once by [New] and invoked as
//
//	<binary> -i <input> <output> -y
package encoder
