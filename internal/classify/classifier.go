// Package classify implements the Tier Classifier (spec.md §4.3): a pure
// function (modulo the cache and metrics side effects) mapping a command
// line to a Tier Classification.
package classify

import (
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"tierroute/internal/contracts"
	"tierroute/internal/logging"
	"tierroute/internal/metrics"
	"tierroute/internal/tokenizer"
)

// argDependentCommands is the cache-key-policy table (spec.md §4.9 "Cache
// key exceptions"): commands whose tier depends on their arguments, so the
// cache key must be the full trimmed line rather than just the name.
var argDependentCommands = set("npm", "python", "python3")

// packageManagerLanguage maps a package-manager command name to the
// language whose worker, if registered, should serve it at Tier 2.5
// (spec.md §4.3 step 6).
var packageManagerLanguage = map[string]string{
	"pip": "python", "pip3": "python", "pipx": "python",
	"gem": "ruby", "bundle": "ruby",
	"cargo": "rust",
}

// Options configures a new Classifier. All binding tables are supplied at
// construction and treated as immutable for the classifier's lifetime,
// matching spec.md §3 "Lifecycle" — callers that need to change RPC
// bindings at runtime (e.g. internal/configwatch) should construct a new
// Classifier rather than mutating one in place.
type Options struct {
	CacheCapacity int

	// FsAvailable reports whether an FsCapability collaborator is
	// configured. It is a function rather than a bool so the router can
	// reflect a capability that may be attached after construction.
	FsAvailable func() bool

	RPCServices     map[string]contracts.RpcServiceBinding
	LoaderBindings  map[string]contracts.WorkerLoaderBinding
	LanguageWorkers map[string]contracts.LanguageWorkerBinding
	LanguageRouter  contracts.LanguageRouter
	SafetyAnalyzer  contracts.SafetyAnalyzer

	// AttachExecutor lets the router bind its polymorphic Executor
	// Adapters (§4.8) onto a freshly computed classification without
	// classify importing router (which would cycle). May be nil, in
	// which case classifications carry no bound Executor and callers
	// must fall back to a tier/handler switch (§9 design note).
	AttachExecutor func(contracts.Classification) contracts.Executor
}

// Classifier implements spec.md §4.3.
type Classifier struct {
	cache    *lru.Cache[string, contracts.Classification]
	capacity int
	metrics  *metrics.Recorder
	log     interface {
		Debugw(msg string, keysAndValues ...interface{})
	}

	mu sync.RWMutex

	fsAvailable     func() bool
	rpcServices     map[string]contracts.RpcServiceBinding
	rpcReverseIndex map[string]string
	loaderBindings  map[string]contracts.WorkerLoaderBinding
	languageWorkers map[string]contracts.LanguageWorkerBinding
	languageRouter  contracts.LanguageRouter
	safetyAnalyzer  contracts.SafetyAnalyzer
	attachExecutor  func(contracts.Classification) contracts.Executor
}

// New builds a Classifier from Options, deriving the RPC reverse index
// from the supplied service bindings.
func New(opts Options, rec *metrics.Recorder) (*Classifier, error) {
	capacity := opts.CacheCapacity
	if capacity <= 0 {
		capacity = 1000
	}
	cache, err := lru.New[string, contracts.Classification](capacity)
	if err != nil {
		return nil, err
	}

	reverse := make(map[string]string)
	for svcName, binding := range opts.RPCServices {
		for _, cmd := range binding.Commands {
			reverse[cmd] = svcName
		}
	}

	fsAvail := opts.FsAvailable
	if fsAvail == nil {
		fsAvail = func() bool { return false }
	}

	return &Classifier{
		cache:           cache,
		capacity:        capacity,
		metrics:         rec,
		log:             logging.For("classify"),
		fsAvailable:     fsAvail,
		rpcServices:     opts.RPCServices,
		rpcReverseIndex: reverse,
		loaderBindings:  opts.LoaderBindings,
		languageWorkers: opts.LanguageWorkers,
		languageRouter:  opts.LanguageRouter,
		safetyAnalyzer:  opts.SafetyAnalyzer,
		attachExecutor:  opts.AttachExecutor,
	}, nil
}

// cacheKey implements the §3/§4.9 cache-key policy.
func cacheKey(name, line string) string {
	if argDependentCommands.has(name) {
		return strings.TrimSpace(line)
	}
	return name
}

// Classify runs the §4.3 algorithm against line.
func (c *Classifier) Classify(line string) contracts.Classification {
	name := tokenizer.CommandName(line)
	key := cacheKey(name, line)

	if cached, ok := c.cache.Get(key); ok {
		if c.metrics != nil {
			c.metrics.RecordClassification(cached, true)
		}
		return cached
	}

	result := c.classifyUncached(name, line)

	if c.metrics != nil {
		c.metrics.RecordClassification(result, false)
	}
	if result.Cacheable() {
		c.cache.Add(key, result)
	}
	return result
}

func (c *Classifier) classifyUncached(name, line string) contracts.Classification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Step 3: fast path — native.
	if Tier1NativeFS.has(name) {
		if c.fsAvailable() {
			return c.finish(contracts.Classification{
				Tier: contracts.TierNative, Handler: contracts.HandlerNative,
				Capability: contracts.CapFS, Reason: "native fs command",
			})
		}
		return c.finish(contracts.Classification{
			Tier: contracts.TierSandbox, Handler: contracts.HandlerSandbox,
			Capability: contracts.CapContainer, Reason: "FsCapability not available",
		})
	}
	if cap, ok := nativeCapabilityFor(name); ok {
		return c.finish(contracts.Classification{
			Tier: contracts.TierNative, Handler: contracts.HandlerNative,
			Capability: cap, Reason: "native " + string(cap) + " command",
		})
	}

	// Step 4: npm native.
	if name == "npm" {
		if sub := firstNonFlagArg(tokenizer.Argv(line)); sub != "" && Tier1NpmNative.has(sub) {
			return c.finish(contracts.Classification{
				Tier: contracts.TierNative, Handler: contracts.HandlerNative,
				Capability: contracts.CapNpm, Reason: "read-only npm subcommand",
			})
		}
	}

	// Step 5: language routing.
	if c.languageRouter != nil {
		if route, ok := c.languageRouter.Route(line, c.languageWorkers); ok && !strings.EqualFold(route.Language, "bash") {
			if worker, registered := c.languageWorkers[route.Language]; registered {
				cl := contracts.Classification{
					Tier: contracts.TierRemote, Handler: contracts.HandlerPolyglot,
					Capability: contracts.Capability(route.Language),
					Reason:     "warm " + route.Language + " worker registered",
				}
				_ = worker // binding itself is looked up again by the router at dispatch time
				return c.finish(cl)
			}

			strategy := contracts.SandboxStrategy{Reason: "no worker for language " + route.Language}
			if c.safetyAnalyzer != nil {
				strategy = c.safetyAnalyzer.Analyze(line)
				strategy.Language = route.Language
			} else {
				strategy.Language = route.Language
			}
			// Not cached: sandboxStrategy depends on full command content.
			return c.finish(contracts.Classification{
				Tier: contracts.TierSandbox, Handler: contracts.HandlerSandbox,
				Capability:      contracts.CapContainer,
				Reason:          "non-bash language routed to sandbox",
				SandboxStrategy: &strategy,
			})
		}
	}

	// Step 6: package-manager -> polyglot.
	if lang, ok := packageManagerLanguage[name]; ok {
		if _, registered := c.languageWorkers[lang]; registered {
			return c.finish(contracts.Classification{
				Tier: contracts.TierRemote, Handler: contracts.HandlerPolyglot,
				Capability: contracts.Capability(lang),
				Reason:     "package manager for registered " + lang + " worker",
			})
		}
	}

	// Step 7: RPC.
	if svcName, ok := c.rpcReverseIndex[name]; ok {
		return c.finish(contracts.Classification{
			Tier: contracts.TierRemote, Handler: contracts.HandlerRPC,
			Capability: contracts.Capability(svcName),
			Reason:     "registered RPC service " + svcName,
		})
	}

	// Step 8: loader.
	for loaderName, binding := range c.loaderBindings {
		for _, m := range binding.Modules {
			if m == name {
				return c.finish(contracts.Classification{
					Tier: contracts.TierLoader, Handler: contracts.HandlerLoader,
					Capability: contracts.Capability(loaderName),
					Reason:     "loader " + loaderName + " advertises module",
				})
			}
		}
	}
	if Tier3LoadableModules.has(name) {
		return c.finish(contracts.Classification{
			Tier: contracts.TierLoader, Handler: contracts.HandlerLoader,
			Capability: contracts.Capability(name),
			Reason:     "static loadable module set",
		})
	}

	// Step 9: fallback.
	if Tier4SandboxCommands.has(name) {
		return c.finish(contracts.Classification{
			Tier: contracts.TierSandbox, Handler: contracts.HandlerSandbox,
			Capability: contracts.CapContainer, Reason: "requires Linux sandbox",
		})
	}
	return c.finish(contracts.Classification{
		Tier: contracts.TierSandbox, Handler: contracts.HandlerSandbox,
		Capability: contracts.CapContainer, Reason: "no higher tier available",
	})
}

func (c *Classifier) finish(cl contracts.Classification) contracts.Classification {
	if c.attachExecutor != nil {
		cl.Executor = c.attachExecutor(cl)
	}
	return cl
}

// firstNonFlagArg returns the first argv entry that doesn't start with '-'.
func firstNonFlagArg(argv []string) string {
	for _, a := range argv {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

// ClearCache empties the classification cache.
func (c *Classifier) ClearCache() {
	c.cache.Purge()
}

// CacheStats reports the current cache size and capacity.
func (c *Classifier) CacheStats() (size int, capacity int) {
	return c.cache.Len(), c.capacity
}

// IsTierAvailable reports whether the given tier could possibly serve the
// given command (empty command means "is any binding registered for this
// tier at all").
func (c *Classifier) IsTierAvailable(tier contracts.Tier, command string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	switch tier {
	case contracts.TierNative:
		if command == "" {
			return true
		}
		if Tier1NativeFS.has(command) {
			return c.fsAvailable()
		}
		_, ok := nativeCapabilityFor(command)
		return ok
	case contracts.TierRemote:
		if command == "" {
			return len(c.rpcReverseIndex) > 0 || len(c.languageWorkers) > 0
		}
		if _, ok := c.rpcReverseIndex[command]; ok {
			return true
		}
		_, ok := c.languageWorkers[command]
		return ok
	case contracts.TierLoader:
		if command == "" {
			return len(c.loaderBindings) > 0 || len(Tier3LoadableModules) > 0
		}
		if Tier3LoadableModules.has(command) {
			return true
		}
		for _, b := range c.loaderBindings {
			for _, m := range b.Modules {
				if m == command {
					return true
				}
			}
		}
		return false
	case contracts.TierSandbox:
		return true // always a theoretical fallback once a SandboxBinding is registered; presence is the router's concern
	default:
		return false
	}
}
