package classify

import "tierroute/internal/contracts"

// Registered command sets (spec.md §3 "Registered command sets", §6's
// static set names). Each is immutable for the process lifetime. A command
// name appears in at most one native class — see DESIGN.md's resolution of
// the posix/compute overlap described informally in spec.md §4.7.

// Tier1NativeFS lists the fs-class commands (require an FsCapability).
var Tier1NativeFS = set(
	"cat", "ls", "head", "tail", "test", "[", "stat", "readlink", "find",
	"grep", "mkdir", "rmdir", "rm", "cp", "mv", "touch", "truncate", "ln",
	"chmod", "chown",
)

// Tier1NativeHTTP lists the http-class commands.
var Tier1NativeHTTP = set("curl", "wget")

// Tier1NativeData lists the data-class commands.
var Tier1NativeData = set("jq", "yq", "base64", "envsubst")

// Tier1NativeCrypto lists the crypto-class commands.
var Tier1NativeCrypto = set(
	"sha256sum", "sha1sum", "sha512sum", "sha384sum", "md5sum",
	"uuidgen", "uuid", "cksum", "sum", "openssl",
)

// Tier1NativeText lists the text-processing-class commands.
var Tier1NativeText = set("sed", "awk", "diff", "patch", "tee", "xargs")

// Tier1NativePosix lists the posix-utils-class commands. echo and printf
// are classified here (rather than also under compute) to preserve the
// one-class-per-command invariant — see DESIGN.md.
var Tier1NativePosix = set(
	"cut", "sort", "tr", "uniq", "wc", "basename", "dirname", "echo",
	"printf", "date", "dd", "od",
)

// Tier1NativeSystem lists the system-utils-class commands.
var Tier1NativeSystem = set("yes", "whoami", "hostname", "printenv")

// Tier1NativeExtended lists the extended-utils-class commands.
var Tier1NativeExtended = set("env", "id", "uname", "tac")

// Tier1NativeCompute lists commands exclusive to the compute class: ones
// with no stdin/fs prerequisite at all. date/basename/dirname/wc/sort/
// uniq/tr/cut/echo/printf are implemented as shared helpers reused by the
// compute dispatcher internally (internal/native/shared) but are NOT
// separately registered here, since posix already classifies them — see
// DESIGN.md "Open Question: posix/compute overlap".
var Tier1NativeCompute = set(
	"true", "false", "pwd", "seq", "expr", "bc", "sleep", "timeout", "rev",
)

// Tier1NpmNative lists the read-only npm subcommands served natively
// instead of via the npm RPC service.
var Tier1NpmNative = set("view", "info", "show", "search", "find", "s")

// Tier3LoadableModules is the static fallback set of Tier-3 candidates —
// commands served by a dynamic module loader when no loader binding
// explicitly advertises them. These are small data-transform utilities
// plausible as dynamically-loaded modules rather than compiled natively.
var Tier3LoadableModules = set("jsonata", "mustache", "semver", "toml2json")

// Tier4SandboxCommands is the static "known expensive" set: commands that
// always require the full sandbox lane (shells, VCS-heavy or build
// tooling, container/orchestration clients) when no higher tier claims
// them first.
var Tier4SandboxCommands = set(
	"bash", "sh", "zsh", "fish", "docker", "podman", "kubectl", "ssh",
	"scp", "rsync", "tar", "gzip", "zip", "unzip", "make", "cmake", "gcc",
	"clang", "cargo", "go", "node", "ruby", "perl", "vim", "nano",
	"systemctl", "apt", "apt-get", "yum", "dnf", "brew",
)

type stringSet map[string]struct{}

func set(names ...string) stringSet {
	s := make(stringSet, len(names))
	for _, n := range names {
		s[n] = struct{}{}
	}
	return s
}

func (s stringSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

// nativeCapabilityFor returns the capability tag for name if it belongs to
// any native command set, checked in the §4.3 step-3 iteration order
// (fs is handled by the caller separately since it has its own fallback
// logic). The boolean reports membership.
func nativeCapabilityFor(name string) (contracts.Capability, bool) {
	switch {
	case Tier1NativeHTTP.has(name):
		return contracts.CapHTTP, true
	case Tier1NativeData.has(name):
		return contracts.CapData, true
	case Tier1NativeCrypto.has(name):
		return contracts.CapCrypto, true
	case Tier1NativeText.has(name):
		return contracts.CapText, true
	case Tier1NativePosix.has(name):
		return contracts.CapPosix, true
	case Tier1NativeSystem.has(name):
		return contracts.CapSystem, true
	case Tier1NativeExtended.has(name):
		return contracts.CapExtended, true
	case Tier1NativeCompute.has(name):
		return contracts.CapCompute, true
	default:
		return "", false
	}
}
