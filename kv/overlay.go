// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import "errors"

var errOverlayNotFound = errors.New("kv: key not found")

// Overlay buffers writes on top of a source store in a save-restore manner.
// Reads fall through to the source for keys not written since the last
// Commit/Revert. Nothing reaches the source until Commit is called, so a
// failed unit of work can be undone with Revert.
type Overlay struct {
	src     GetPutter
	writes  map[string][]byte
	deletes map[string]struct{}
}

// NewOverlay creates an overlay on top of src.
func NewOverlay(src GetPutter) *Overlay {
	return &Overlay{
		src:     src,
		writes:  make(map[string][]byte),
		deletes: make(map[string]struct{}),
	}
}

func (o *Overlay) Get(key []byte) ([]byte, error) {
	if v, ok := o.writes[string(key)]; ok {
		return append([]byte(nil), v...), nil
	}
	if _, ok := o.deletes[string(key)]; ok {
		return nil, errOverlayNotFound
	}
	return o.src.Get(key)
}

func (o *Overlay) Has(key []byte) (bool, error) {
	if _, ok := o.writes[string(key)]; ok {
		return true, nil
	}
	if _, ok := o.deletes[string(key)]; ok {
		return false, nil
	}
	return o.src.Has(key)
}

func (o *Overlay) IsNotFound(err error) bool {
	return errors.Is(err, errOverlayNotFound) || o.src.IsNotFound(err)
}

func (o *Overlay) Put(key, value []byte) error {
	delete(o.deletes, string(key))
	o.writes[string(key)] = append([]byte(nil), value...)
	return nil
}

func (o *Overlay) Delete(key []byte) error {
	delete(o.writes, string(key))
	o.deletes[string(key)] = struct{}{}
	return nil
}

// Uncommitted returns the number of buffered changes.
func (o *Overlay) Uncommitted() int {
	return len(o.writes) + len(o.deletes)
}

// Commit flushes buffered changes to the source store and resets the overlay.
func (o *Overlay) Commit() error {
	for k, v := range o.writes {
		if err := o.src.Put([]byte(k), v); err != nil {
			return err
		}
	}
	for k := range o.deletes {
		if err := o.src.Delete([]byte(k)); err != nil {
			return err
		}
	}
	o.reset()
	return nil
}

// Revert discards all changes buffered since the last Commit/Revert.
func (o *Overlay) Revert() {
	o.reset()
}

func (o *Overlay) reset() {
	o.writes = make(map[string][]byte)
	o.deletes = make(map[string]struct{})
}
