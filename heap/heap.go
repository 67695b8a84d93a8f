// Package heap implements the syntactic heap: an append-only arena of
// immutable syntax nodes where structurally identical nodes share one slot.
//
// Children are always allocated before their parents, so a Handle only ever
// points backwards and handle equality stands in for deep equality.
package heap

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"slices"
	"strconv"

	"github.com/cottand/assay/internal/log"
)

var logger = log.DefaultLogger.With("section", "heap")

// Handle identifies a node inside exactly one Heap
type Handle int32

// Nil is never returned by Allocate
const Nil Handle = -1

// Op is the operation tag of a node
type Op uint8

// Item is an allocated node. Payload is nil, a bool, a string, an int, a *big.Int
// or a Keyed value, and must never be mutated once allocated.
type Item struct {
	Op       Op
	Payload  any
	Children []Handle
}

// Child returns the i-th child
func (i Item) Child(n int) Handle { return i.Children[n] }

// Keyed payloads are compared through their key
type Keyed interface {
	PayloadKey() string
}

var ErrForeignNode = errors.New("node is already allocated in another heap")

type key struct {
	op       Op
	payload  string
	children string
}

// Heap is not safe for concurrent use: each assertion owns its own Heap.
type Heap struct {
	items []Item
	index map[key]Handle
}

func New() *Heap {
	return &Heap{
		index: make(map[key]Handle, 256),
	}
}

// Len is the number of distinct nodes. It never decreases.
func (h *Heap) Len() int { return len(h.items) }

// Get returns the node behind handle. It panics on handles not issued by h.
func (h *Heap) Get(handle Handle) Item {
	if handle < 0 || int(handle) >= len(h.items) {
		panic(fmt.Sprintf("heap: handle %d out of range (size %d)", handle, len(h.items)))
	}
	return h.items[handle]
}

// Op is a shortcut for Get(handle).Op
func (h *Heap) Op(handle Handle) Op { return h.Get(handle).Op }

// Allocate interns a node whose children are already allocated in h,
// returning the existing handle when an identical node exists.
func (h *Heap) Allocate(op Op, payload any, children ...Handle) Handle {
	for _, c := range children {
		if c < 0 || int(c) >= len(h.items) {
			panic(fmt.Sprintf("heap: child handle %d out of range (size %d)", c, len(h.items)))
		}
	}
	k := key{op: op, payload: payloadKey(payload), children: childrenKey(children)}
	if existing, ok := h.index[k]; ok {
		return existing
	}
	handle := Handle(len(h.items))
	h.items = append(h.items, Item{Op: op, Payload: payload, Children: slices.Clone(children)})
	h.index[k] = handle
	if handle%4096 == 0 && handle > 0 {
		logger.Debug("heap grew", slog.Int("size", len(h.items)))
	}
	return handle
}

// Lookup returns the handle of an identical node if one was already allocated
func (h *Heap) Lookup(op Op, payload any, children ...Handle) (Handle, bool) {
	handle, ok := h.index[key{op: op, payload: payloadKey(payload), children: childrenKey(children)}]
	return handle, ok
}

func childrenKey(children []Handle) string {
	buf := make([]byte, 0, 4*len(children))
	for _, c := range children {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(c))
	}
	return string(buf)
}

func payloadKey(payload any) string {
	switch p := payload.(type) {
	case nil:
		return ""
	case bool:
		if p {
			return "b:t"
		}
		return "b:f"
	case string:
		return "s:" + p
	case int:
		return "i:" + strconv.Itoa(p)
	case *big.Int:
		return "n:" + p.String()
	case Keyed:
		return "k:" + p.PayloadKey()
	default:
		panic(fmt.Sprintf("heap: unsupported payload type %T", payload))
	}
}
