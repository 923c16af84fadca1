package epsilon

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"unsafe"
)

const (
	VersionMajor uint16 = 1
	VersionMinor uint16 = 1
)

var (
	// Magic opens every stream: the bytes "epserde " read as a native-endian word.
	Magic = binary.NativeEndian.Uint64([]byte("epserde "))
	// MagicRev is Magic as seen by a machine of the opposite endianness.
	MagicRev = bits.ReverseBytes64(Magic)
)

// PointerWidth is the size in bytes of uint on this machine.
const PointerWidth = uint8(unsafe.Sizeof(uint(0)))

// Header is the metadata written before every root value.
type Header struct {
	Magic        uint64
	Major        uint16
	Minor        uint16
	PointerWidth uint8
	TypeHash     uint64
	AlignHash    uint64
	TypeName     string
}

func writeHeader(w FieldWriter, t TypeInfo) error {
	if err := WriteField[uint64, uint64](w, "MAGIC", Uint64(), Magic); err != nil {
		return err
	}
	if err := WriteField[uint16, uint16](w, "MAJOR_VERSION", Uint16(), VersionMajor); err != nil {
		return err
	}
	if err := WriteField[uint16, uint16](w, "MINOR_VERSION", Uint16(), VersionMinor); err != nil {
		return err
	}
	if err := WriteField[uint8, uint8](w, "USIZE_SIZE", Uint8(), PointerWidth); err != nil {
		return err
	}
	if err := WriteField[uint64, uint64](w, "TYPE_HASH", Uint64(), TypeHash(t)); err != nil {
		return err
	}
	if err := WriteField[uint64, uint64](w, "ALIGN_HASH", Uint64(), AlignHash(t)); err != nil {
		return err
	}
	return WriteField(w, "TYPE_NAME", String(), t.TypeName())
}

// ReadHeader reads the header at the start of r without comparing it to any
// type. It fails only if the stream is not a stream of this codec, written
// with a compatible version on a machine of the same endianness and word size.
func ReadHeader(r ReadWithPos) (Header, error) {
	var hd Header
	var err error
	if hd.Magic, err = Uint64().DecodeFull(r); err != nil {
		return hd, err
	}
	switch hd.Magic {
	case Magic:
	case MagicRev:
		return hd, ErrEndianness
	default:
		return hd, fmt.Errorf("%w: found 0x%016x, expected 0x%016x", ErrMagicCookie, hd.Magic, Magic)
	}

	if hd.Major, err = Uint16().DecodeFull(r); err != nil {
		return hd, err
	}
	if hd.Major != VersionMajor {
		return hd, fmt.Errorf("%w: found %d, expected %d", ErrMajorVersion, hd.Major, VersionMajor)
	}
	if hd.Minor, err = Uint16().DecodeFull(r); err != nil {
		return hd, err
	}
	if hd.Minor > VersionMinor {
		return hd, fmt.Errorf("%w: found %d, expected at most %d", ErrMinorVersion, hd.Minor, VersionMinor)
	}
	if hd.PointerWidth, err = Uint8().DecodeFull(r); err != nil {
		return hd, err
	}
	if hd.PointerWidth != PointerWidth {
		return hd, fmt.Errorf("%w: found %d, expected %d", ErrPointerWidth, hd.PointerWidth, PointerWidth)
	}

	if hd.TypeHash, err = Uint64().DecodeFull(r); err != nil {
		return hd, err
	}
	if hd.AlignHash, err = Uint64().DecodeFull(r); err != nil {
		return hd, err
	}
	hd.TypeName, err = String().DecodeFull(r)
	return hd, err
}

// CheckHeader reads the header at the start of r and verifies that the
// stream holds a value of type t. Nothing past the header is consumed.
func CheckHeader(r ReadWithPos, t TypeInfo) error {
	hd, err := ReadHeader(r)
	if err != nil {
		return err
	}
	if th := TypeHash(t); hd.TypeHash != th {
		return &TypeHashError{
			SelfTypeName: t.TypeName(),
			SelfTypeHash: th,
			SerTypeName:  hd.TypeName,
			SerTypeHash:  hd.TypeHash,
		}
	}
	if ah := AlignHash(t); hd.AlignHash != ah {
		return &AlignHashError{
			SelfTypeName:  t.TypeName(),
			SelfAlignHash: ah,
			SerTypeName:   hd.TypeName,
			SerAlignHash:  hd.AlignHash,
		}
	}
	return nil
}
