// Package wire defines the JSON messages two processes exchange to hand
// a texture or synchronization handle across a socket or pipe.
//
// The messages carry everything the importing side needs to call
// ImportTexture without out-of-band agreement: the handle fields plus the
// full descriptor. Enumerations travel as their wire names ("vulkan",
// "opaque_fd", "RGBA8Unorm"), never as numeric codes, so a message stays
// readable in logs and survives reordering of the Go constants.
//
// The wire layer transports bookkeeping only. On platforms where the raw
// handle is a file descriptor the integer is meaningless across the
// process boundary; the fd itself must travel by SCM_RIGHTS or handle
// duplication, and the message's raw_handle is then rewritten by the
// receiver. Surface ids and NT handle values pass through as-is.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/gogpu/texshare"
)

// TextureMessage is the interchange form of a texture handle and its
// descriptor.
type TextureMessage struct {
	Backend             string   `json:"backend"`
	RawHandle           uint64   `json:"raw_handle"`
	Size                uint64   `json:"size"`
	MemoryTypeIndex     uint32   `json:"memory_type_index"`
	HandleType          string   `json:"handle_type"`
	DedicatedAllocation bool     `json:"dedicated_allocation"`
	Width               uint32   `json:"width"`
	Height              uint32   `json:"height"`
	Format              string   `json:"format"`
	Usage               []string `json:"usage"`
	Label               string   `json:"label,omitempty"`
}

// SyncMessage is the interchange form of a synchronization handle.
type SyncMessage struct {
	Kind       string `json:"kind"`
	Backend    string `json:"backend"`
	RawHandle  uint64 `json:"raw_handle"`
	HandleType string `json:"handle_type"`
	Value      uint64 `json:"value,omitempty"`
}

// EncodeTexture serializes a handle and its descriptor. Both are
// validated first so a malformed message is never produced.
func EncodeTexture(handle texshare.TextureHandle, desc texshare.TextureDescriptor) ([]byte, error) {
	if err := handle.Validate(); err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	msg := TextureMessage{
		Backend:             handle.Backend.String(),
		RawHandle:           handle.RawHandle,
		Size:                handle.Size,
		MemoryTypeIndex:     handle.MemoryTypeIndex,
		HandleType:          handle.Type.String(),
		DedicatedAllocation: handle.DedicatedAllocation,
		Width:               desc.Width,
		Height:              desc.Height,
		Format:              desc.Format.String(),
		Usage:               desc.Usage.Names(),
		Label:               desc.Label,
	}
	return json.Marshal(msg)
}

// DecodeTexture parses a texture message back into a handle and
// descriptor. Unknown enumeration names and missing required fields fail
// with the matching sentinel kind; the returned pair passes Validate.
func DecodeTexture(data []byte) (texshare.TextureHandle, texshare.TextureDescriptor, error) {
	var msg TextureMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return texshare.TextureHandle{}, texshare.TextureDescriptor{},
			fmt.Errorf("%w: %v", texshare.ErrInvalidHandle, err)
	}
	return msg.Resolve()
}

// Resolve converts the message's wire names back into typed values.
func (msg TextureMessage) Resolve() (texshare.TextureHandle, texshare.TextureDescriptor, error) {
	var (
		handle texshare.TextureHandle
		desc   texshare.TextureDescriptor
	)

	backend, err := texshare.ParseBackend(msg.Backend)
	if err != nil {
		return handle, desc, err
	}
	if msg.HandleType == "" {
		return handle, desc, fmt.Errorf("%w: message missing handle_type", texshare.ErrInvalidHandle)
	}
	handleType, err := texshare.ParseHandleType(msg.HandleType)
	if err != nil {
		return handle, desc, err
	}
	format, err := texshare.ParseFormat(msg.Format)
	if err != nil {
		return handle, desc, err
	}
	usage, err := texshare.ParseUsage(msg.Usage)
	if err != nil {
		return handle, desc, err
	}

	handle = texshare.TextureHandle{
		Backend:             backend,
		RawHandle:           msg.RawHandle,
		Size:                msg.Size,
		MemoryTypeIndex:     msg.MemoryTypeIndex,
		Type:                handleType,
		DedicatedAllocation: msg.DedicatedAllocation,
	}
	desc = texshare.TextureDescriptor{
		Width:  msg.Width,
		Height: msg.Height,
		Format: format,
		Usage:  usage,
		Label:  msg.Label,
	}
	if err := handle.Validate(); err != nil {
		return texshare.TextureHandle{}, texshare.TextureDescriptor{}, err
	}
	if err := desc.Validate(); err != nil {
		return texshare.TextureHandle{}, texshare.TextureDescriptor{}, err
	}
	return handle, desc, nil
}

// EncodeSync serializes a synchronization handle.
func EncodeSync(handle texshare.SyncHandle) ([]byte, error) {
	if err := handle.Validate(); err != nil {
		return nil, err
	}
	msg := SyncMessage{
		Kind:       handle.Kind.String(),
		Backend:    handle.Backend.String(),
		RawHandle:  handle.RawHandle,
		HandleType: handle.Type.String(),
		Value:      handle.Value,
	}
	return json.Marshal(msg)
}

// DecodeSync parses a sync message back into a handle.
func DecodeSync(data []byte) (texshare.SyncHandle, error) {
	var msg SyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return texshare.SyncHandle{}, fmt.Errorf("%w: %v", texshare.ErrInvalidHandle, err)
	}
	return msg.Resolve()
}

// Resolve converts the message's wire names back into typed values.
func (msg SyncMessage) Resolve() (texshare.SyncHandle, error) {
	kind, err := texshare.ParseSyncKind(msg.Kind)
	if err != nil {
		return texshare.SyncHandle{}, err
	}
	backend, err := texshare.ParseBackend(msg.Backend)
	if err != nil {
		return texshare.SyncHandle{}, err
	}
	if msg.HandleType == "" {
		return texshare.SyncHandle{}, fmt.Errorf("%w: message missing handle_type", texshare.ErrInvalidHandle)
	}
	handleType, err := texshare.ParseHandleType(msg.HandleType)
	if err != nil {
		return texshare.SyncHandle{}, err
	}

	handle := texshare.SyncHandle{
		Kind:      kind,
		Backend:   backend,
		RawHandle: msg.RawHandle,
		Type:      handleType,
		Value:     msg.Value,
	}
	if err := handle.Validate(); err != nil {
		return texshare.SyncHandle{}, err
	}
	return handle, nil
}
