package models

import (
	"strconv"
)

// SerializableInt is an int that round-trips through the text-based hash
// serialization used for Redis. The binary representation is deliberately the
// same as the text one so that values written by the Redis client can be read
// back through a text unmarshaller.
type SerializableInt int

func (s SerializableInt) MarshalBinary() (data []byte, err error) {
	return s.MarshalText()
}

func (s *SerializableInt) UnmarshalBinary(data []byte) error {
	return s.UnmarshalText(data)
}

func (s SerializableInt) MarshalText() (data []byte, err error) {
	return []byte(strconv.Itoa(int(s))), nil
}

func (s *SerializableInt) UnmarshalText(data []byte) error {
	val, err := strconv.Atoi(string(data))
	if err != nil {
		return err
	}
	*s = SerializableInt(val)
	return nil
}
