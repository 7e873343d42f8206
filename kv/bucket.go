// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"github.com/syndtr/goleveldb/leveldb/util"
)

// Bucket provides logical bucket for kv store.
type Bucket string

func (b Bucket) key(key []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(key)), b...), key...)
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &bucketStore{bucket: b, src: src}
}

// NewBulk wraps the source bulk so that all keys are put into the bucket.
// Several buckets can share one source bulk to be written atomically.
func (b Bucket) NewBulk(src Bulk) Bulk {
	return &bucketBulk{bucket: b, Bulk: src}
}

type bucketStore struct {
	bucket Bucket
	src    Store
}

func (s *bucketStore) Get(key []byte) ([]byte, error) {
	return s.src.Get(s.bucket.key(key))
}

func (s *bucketStore) Has(key []byte) (bool, error) {
	return s.src.Has(s.bucket.key(key))
}

func (s *bucketStore) IsNotFound(err error) bool {
	return s.src.IsNotFound(err)
}

func (s *bucketStore) Put(key, val []byte) error {
	return s.src.Put(s.bucket.key(key), val)
}

func (s *bucketStore) Delete(key []byte) error {
	return s.src.Delete(s.bucket.key(key))
}

func (s *bucketStore) Bulk() Bulk {
	return s.bucket.NewBulk(s.src.Bulk())
}

func (s *bucketStore) Iterate(r Range) Iterator {
	r.Start = s.bucket.key(r.Start)
	if len(r.Limit) == 0 {
		r.Limit = util.BytesPrefix([]byte(s.bucket)).Limit
	} else {
		r.Limit = s.bucket.key(r.Limit)
	}
	return &bucketIterator{Iterator: s.src.Iterate(r), prefixLen: len(s.bucket)}
}

type bucketBulk struct {
	Bulk
	bucket Bucket
}

func (b *bucketBulk) Put(key, val []byte) error {
	return b.Bulk.Put(b.bucket.key(key), val)
}

func (b *bucketBulk) Delete(key []byte) error {
	return b.Bulk.Delete(b.bucket.key(key))
}

type bucketIterator struct {
	Iterator
	prefixLen int
}

func (i *bucketIterator) Key() []byte {
	return i.Iterator.Key()[i.prefixLen:]
}
