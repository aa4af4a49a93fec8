// Package crypto implements the native crypto-class commands: the sum
// family, uuidgen/uuid, cksum/sum, and a very narrow openssl subset
// (spec.md §4.7 "crypto").
package crypto

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash/crc32"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tierroute/internal/contracts"
	"tierroute/internal/native/shared"
)

// Dispatch runs one crypto-class command.
func Dispatch(ctx context.Context, name string, argv []string, stdin string, cwd string, fsCap contracts.FsCapability) shared.Output {
	switch name {
	case "sha256sum":
		return sumCmd(ctx, argv, stdin, fsCap, sha256.New().Size(), func(b []byte) []byte { h := sha256.Sum256(b); return h[:] })
	case "sha1sum":
		return sumCmd(ctx, argv, stdin, fsCap, sha1.New().Size(), func(b []byte) []byte { h := sha1.Sum(b); return h[:] })
	case "sha512sum":
		return sumCmd(ctx, argv, stdin, fsCap, sha512.New().Size(), func(b []byte) []byte { h := sha512.Sum512(b); return h[:] })
	case "sha384sum":
		return sumCmd(ctx, argv, stdin, fsCap, 48, func(b []byte) []byte { h := sha512.Sum384(b); return h[:] })
	case "md5sum":
		return sumCmd(ctx, argv, stdin, fsCap, md5.Size, func(b []byte) []byte { h := md5.Sum(b); return h[:] })
	case "uuidgen", "uuid":
		return shared.Ok(uuid.NewString())
	case "cksum", "sum":
		return cksum(ctx, argv, stdin, fsCap)
	case "openssl":
		return openssl(argv, stdin)
	default:
		return shared.Fail(127, "command not found: "+name)
	}
}

func sumCmd(ctx context.Context, argv []string, stdin string, fsCap contracts.FsCapability, _ int, digest func([]byte) []byte) shared.Output {
	_, paths := shared.ParseFlags(argv)
	if len(paths) == 0 {
		sum := digest([]byte(stdin))
		return shared.Ok(hex.EncodeToString(sum) + "  -")
	}
	var lines []string
	for _, p := range paths {
		if fsCap == nil {
			return shared.Fail(1, "FsCapability not available")
		}
		data, err := fsCap.Read(ctx, p)
		if err != nil {
			return shared.Fail(1, p+": "+err.Error())
		}
		lines = append(lines, hex.EncodeToString(digest(data))+"  "+p)
	}
	return shared.Ok(strings.Join(lines, "\n"))
}

func cksum(ctx context.Context, argv []string, stdin string, fsCap contracts.FsCapability) shared.Output {
	_, paths := shared.ParseFlags(argv)
	if len(paths) == 0 {
		crc := crc32.ChecksumIEEE([]byte(stdin))
		return shared.Ok(strconv.FormatUint(uint64(crc), 10) + " " + strconv.Itoa(len(stdin)))
	}
	var lines []string
	for _, p := range paths {
		data, err := fsCap.Read(ctx, p)
		if err != nil {
			return shared.Fail(1, p+": "+err.Error())
		}
		crc := crc32.ChecksumIEEE(data)
		lines = append(lines, strconv.FormatUint(uint64(crc), 10)+" "+strconv.Itoa(len(data))+" "+p)
	}
	return shared.Ok(strings.Join(lines, "\n"))
}

// openssl supports only the narrow digest form: `openssl dgst -sha256`
// (or -md5/-sha1), reading stdin — enough to satisfy a script that probes
// for the binary's presence without shelling out to a real install.
func openssl(argv []string, stdin string) shared.Output {
	flags, positional := shared.ParseFlags(argv)
	if len(positional) == 0 || positional[0] != "dgst" {
		return shared.Fail(1, "openssl: unsupported invocation")
	}
	switch {
	case shared.HasFlag(flags, "-sha256"):
		h := sha256.Sum256([]byte(stdin))
		return shared.Ok("(stdin)= " + hex.EncodeToString(h[:]))
	case shared.HasFlag(flags, "-sha1"):
		h := sha1.Sum([]byte(stdin))
		return shared.Ok("(stdin)= " + hex.EncodeToString(h[:]))
	case shared.HasFlag(flags, "-md5"):
		h := md5.Sum([]byte(stdin))
		return shared.Ok("(stdin)= " + hex.EncodeToString(h[:]))
	default:
		return shared.Fail(1, "openssl: unsupported digest")
	}
}
