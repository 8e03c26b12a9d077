// Copyright (c) 2025 Nishisan. All rights reserved.
// Use of this source code is governed by the N-Backup License (Non-Commercial Evaluation)
// that can be found in the LICENSE file.

// Package dungeon decodes the bespoke tagged-container binary blob used to
// carry dungeon-state sync payloads: every primitive is an 8-byte padded
// little-endian i32, containers are delimited by BEGIN/END sentinels, and
// the target map uses a three-count (add, remove, update) encoding.
package dungeon

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	tagBegin = -2
	tagEnd   = -3
	tagEmpty = -4
	padBytes = 4
)

// Sentinel errors for the fixed, enumerable ways a blob can be malformed.
var (
	ErrBlobTruncated  = errors.New("dungeon: unexpected end of buffer while reading a field")
	ErrContainerBegin = errors.New("dungeon: invalid container begin tag")
	ErrNegativeSize   = errors.New("dungeon: negative container size")
	ErrSizeOverflow   = errors.New("dungeon: container size overflows the buffer")
	ErrNegativeCount  = errors.New("dungeon: negative target-map section count")
)

// Target is one entry of the dungeon's target map.
type Target struct {
	TargetID int32
	Nums     int32
	Complete int32
}

// State is the decoded dungeon-state sync payload.
type State struct {
	FlowState *int32 // nil if the sync payload carried no flow_info field
	Targets   []Target
}

// cursor walks a byte buffer reading 8-byte padded little-endian i32s.
type cursor struct {
	data   []byte
	offset int
}

func (c *cursor) setOffset(offset int) {
	if offset > len(c.data) {
		offset = len(c.data)
	}
	c.offset = offset
}

func (c *cursor) readI32Padded() (int32, error) {
	if c.offset+4+padBytes > len(c.data) {
		return 0, ErrBlobTruncated
	}
	v := int32(binary.LittleEndian.Uint32(c.data[c.offset : c.offset+4]))
	c.offset += 4 + padBytes
	return v, nil
}

// fieldHandler processes one container field; it returns handled=true if
// it consumed the field's value itself. An unhandled field causes the
// container walk to jump straight to its end, since individual field
// sizes aren't encoded — only the whole container's body size is.
type fieldHandler func(field int32, inner *cursor, bodyEnd int) (handled bool, err error)

// parseContainer reads a BEGIN/size/[field,value]*/END container, invoking
// handle for every field tag encountered.
func parseContainer(c *cursor, handle fieldHandler) error {
	begin, err := c.readI32Padded()
	if err != nil {
		return err
	}
	if begin != tagBegin {
		return fmt.Errorf("%w: got %d", ErrContainerBegin, begin)
	}

	size, err := c.readI32Padded()
	if err != nil {
		return err
	}
	if size == tagEnd {
		return nil
	}
	if size < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeSize, size)
	}

	bodyStart := c.offset
	bodyEnd := bodyStart + int(size)
	if bodyEnd > len(c.data) {
		return ErrSizeOverflow
	}

	field, err := c.readI32Padded()
	if err != nil {
		return err
	}

	for field > 0 {
		handled, err := handle(field, c, bodyEnd)
		if err != nil {
			return err
		}
		if !handled {
			c.setOffset(bodyEnd)
		}
		if c.offset+4+padBytes > len(c.data) {
			break
		}
		field, err = c.readI32Padded()
		if err != nil {
			return err
		}
	}

	if field != tagEnd {
		c.setOffset(bodyEnd)
	}
	return nil
}

// parseTarget reads a single DungeonTargetData container.
func parseTarget(c *cursor) (Target, error) {
	var out Target
	err := parseContainer(c, func(field int32, inner *cursor, _ int) (bool, error) {
		switch field {
		case 1:
			v, err := inner.readI32Padded()
			if err != nil {
				return false, err
			}
			out.TargetID = v
			return true, nil
		case 2:
			v, err := inner.readI32Padded()
			if err != nil {
				return false, err
			}
			out.Nums = v
			return true, nil
		case 3:
			v, err := inner.readI32Padded()
			if err != nil {
				return false, err
			}
			out.Complete = v
			return true, nil
		default:
			return false, nil
		}
	})
	return out, err
}

// parseTargetMap reads the target map's three-count (add, remove, update)
// encoding. An EMPTY tag means an empty map; a leading -1 means only an
// add-count follows (no remove/update sections).
func parseTargetMap(c *cursor) ([]Target, error) {
	var entries []Target

	add, err := c.readI32Padded()
	if err != nil {
		return nil, err
	}

	if add == tagEmpty {
		return entries, nil
	}

	var remove, update int32
	if add == -1 {
		add, err = c.readI32Padded()
		if err != nil {
			return nil, err
		}
	} else {
		remove, err = c.readI32Padded()
		if err != nil {
			return nil, err
		}
		update, err = c.readI32Padded()
		if err != nil {
			return nil, err
		}
	}

	if add < 0 || remove < 0 || update < 0 {
		return nil, ErrNegativeCount
	}

	for i := int32(0); i < add; i++ {
		if _, err := c.readI32Padded(); err != nil { // key, unused
			return nil, err
		}
		target, err := parseTarget(c)
		if err != nil {
			return nil, err
		}
		entries = append(entries, target)
	}

	for i := int32(0); i < remove; i++ {
		if _, err := c.readI32Padded(); err != nil { // key, unused
			return nil, err
		}
	}

	for i := int32(0); i < update; i++ {
		if _, err := c.readI32Padded(); err != nil { // key, unused
			return nil, err
		}
		target, err := parseTarget(c)
		if err != nil {
			return nil, err
		}
		entries = append(entries, target)
	}

	return entries, nil
}

// parseFlowState reads the flow_info container (field 1 = flow_state).
func parseFlowState(c *cursor) (*int32, error) {
	var state *int32
	err := parseContainer(c, func(field int32, inner *cursor, _ int) (bool, error) {
		if field != 1 {
			return false, nil
		}
		v, err := inner.readI32Padded()
		if err != nil {
			return false, err
		}
		state = &v
		return true, nil
	})
	return state, err
}

// Parse decodes a dungeon-state sync payload.
func Parse(data []byte) (State, error) {
	c := &cursor{data: data}
	var out State

	err := parseContainer(c, func(field int32, inner *cursor, _ int) (bool, error) {
		switch field {
		case 2: // DungeonSyncData.flow_info
			state, err := parseFlowState(inner)
			if err != nil {
				return false, err
			}
			out.FlowState = state
			return true, nil
		case 4: // DungeonSyncData.target
			err := parseContainer(inner, func(targetField int32, mapCur *cursor, _ int) (bool, error) {
				if targetField != 1 { // DungeonTarget.target_data (map<int, DungeonTargetData>)
					return false, nil
				}
				targets, err := parseTargetMap(mapCur)
				if err != nil {
					return false, err
				}
				out.Targets = targets
				return true, nil
			})
			return true, err
		default:
			return false, nil
		}
	})

	return out, err
}
