// Package mpp wraps the Rockchip MPP (Media Process Platform) vendor
// library behind a small, reconfigurable JPEG encoder adapter.
//
// The vendor library itself is a cgo boundary and is abstracted behind the
// Backend interface: backend_mpp.go (build tag "mpp") implements it against
// the real vendor headers, backend_stub.go is the default build's
// hardware-absent fallback, and adapter_test.go carries a deterministic
// software fake so the Adapter state machine is exercised without either a
// physical RK3588 or cgo.
package mpp
