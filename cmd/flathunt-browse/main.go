// Command flathunt-browse is the interactive terminal client for the
// apartment catalog. It drives the browse engine (filter store, list
// store, debounced apply, URL sync, saved filters) against a running
// flathunt API, or against the embedded catalog in offline mode
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"flathunt/internal/adapters/listing"
	"flathunt/internal/browse/filterstore"
	"flathunt/internal/browse/liststore"
	"flathunt/internal/browse/persist"
	"flathunt/internal/browse/prefs"
	"flathunt/internal/browse/session"
	"flathunt/internal/browse/urlstate"
	"flathunt/internal/core/catalog"
	"flathunt/internal/core/dataset"
	"flathunt/internal/platform/cache"
	"flathunt/internal/platform/config"
	"flathunt/internal/platform/logger"

	listingsrepo "flathunt/internal/services/api/listings/repo"
	listingssvc "flathunt/internal/services/api/listings/service"
)

// pr groups digits so prices stay readable
var pr = message.NewPrinter(language.English)

func main() {
	_ = godotenv.Load()

	var (
		fConfig   = flag.String("config", "", "settings file (default ~/.config/flathunt/browse.toml)")
		fBase     = flag.String("base", "", "API origin, e.g. http://localhost:4000 (overrides settings)")
		fState    = flag.String("state", "", "state dir for the cache and saved filters (overrides settings)")
		fLimit    = flag.Int("limit", 0, "page size 1-100 (overrides settings)")
		fDebounce = flag.Duration("debounce", 0, "filter apply quiet window (overrides settings)")
		fQuery    = flag.String("q", "", "initial filter query, e.g. priceMin=2000000&priceMax=9000000")
		fOffline  = flag.Bool("offline", false, "browse the embedded catalog without a server")
		fNoState  = flag.Bool("no-state", false, "disable the response cache and saved filters")
	)
	flag.Parse()

	// the REPL owns stdout; logs go to stderr and stay quiet unless asked
	lopt := logger.FromEnv()
	if os.Getenv("LOG_LEVEL") == "" {
		lopt.Level = "warn"
	}
	lopt.Writer = os.Stderr
	lopt.Service = "flathunt-browse"
	logger.Init(lopt)
	l := logger.Get()

	// settings resolve file < BROWSE_* env < flags
	root := config.New()
	bcfg := root.Prefix("BROWSE_")

	p := prefs.Load(*fConfig)
	p.BaseURL = bcfg.MayString("BASE_URL", p.BaseURL)
	p.StateDir = bcfg.MayString("STATE_DIR", p.StateDir)
	if n := bcfg.MayInt("LIMIT", p.Limit); n >= 1 && n <= catalog.MaxLimit {
		p.Limit = n
	}
	quiet := bcfg.MayDuration("DEBOUNCE", p.Debounce())

	if *fBase != "" {
		p.BaseURL = *fBase
	}
	if *fState != "" {
		p.StateDir = *fState
	}
	if *fLimit >= 1 && *fLimit <= catalog.MaxLimit {
		p.Limit = *fLimit
	}
	if *fDebounce > 0 {
		quiet = *fDebounce
	}
	if *fNoState {
		p.StateDir = ""
	}

	fetch, origin := buildFetcher(root, p, *fOffline, l)

	var saved *persist.Store
	if p.StateDir != "" {
		saved = persist.New(p.StateDir)
	}

	filters := filterstore.New()
	list := liststore.New(fetch, liststore.WithLimit(p.Limit))
	loc := urlstate.NewMemLocation(*fQuery)

	sess := session.New(session.Options{
		Filters:  filters,
		List:     list,
		Location: loc,
		Persist:  saved,
		Quiet:    quiet,
		Log:      l,
	})
	defer sess.Stop()

	ctx := context.Background()
	fmt.Printf("flathunt browse: %s (help for commands)\n", origin)
	if err := sess.Start(ctx); err != nil {
		fmt.Printf("initial load failed: %v (retry to try again)\n", err)
	} else {
		printList(list)
	}

	repl(ctx, sess, loc)
}

// buildFetcher returns the page loader the list store pulls through: the
// HTTP client with its response cache, or the embedded catalog served
// in-process when offline
func buildFetcher(root config.Conf, p prefs.Prefs, offline bool, l *logger.Logger) (liststore.Fetcher, string) {
	if offline {
		pack, err := dataset.Load()
		if err != nil {
			l.Panic().Err(err).Msg("embedded dataset load failed")
		}
		svc := listingssvc.New(pack, listingsrepo.NewMem())
		return svc.List, fmt.Sprintf("offline catalog (%s, %d apartments)", pack.City, pack.Count())
	}

	ccfg := cache.FromConfig(root)
	if ccfg.Dir == "" {
		ccfg.Dir = p.StateDir
	}
	var c *cache.Cache
	if got, err := cache.New(ccfg); err != nil {
		l.Warn().Err(err).Msg("response cache disabled")
	} else {
		c = got
	}
	cl := listing.New(listing.Options{BaseURL: p.BaseURL}, c)
	return cl.Fetch, p.BaseURL
}

func repl(ctx context.Context, sess *session.Session, loc *urlstate.MemLocation) {
	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			fmt.Println()
			return
		}
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "quit", "exit", "q":
			return

		case "help", "h", "?":
			printHelp()

		case "price":
			lo, hi, err := int64Bounds(args)
			if err == nil {
				err = sess.Filters().SetPriceRange(lo, hi)
			}
			if err != nil {
				fmt.Println(err)
				continue
			}
			printFilters(sess)

		case "area":
			lo, hi, err := floatBounds(args)
			if err == nil {
				err = sess.Filters().SetAreaRange(lo, hi)
			}
			if err != nil {
				fmt.Println(err)
				continue
			}
			printFilters(sess)

		case "floor":
			lo, hi, err := intBounds(args)
			if err == nil {
				err = sess.Filters().SetFloorRange(lo, hi)
			}
			if err != nil {
				fmt.Println(err)
				continue
			}
			printFilters(sess)

		case "room":
			if len(args) != 1 {
				fmt.Println("want room <n>")
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("bad room count %q\n", args[0])
				continue
			}
			if err := sess.Filters().ToggleRoom(n); err != nil {
				fmt.Println(err)
				continue
			}
			printFilters(sess)

		case "rooms":
			if len(args) != 1 {
				fmt.Println("want rooms <a,b,c> or rooms -")
				continue
			}
			var ns []int
			if args[0] != "-" {
				var err error
				if ns, err = parseRooms(args[0]); err != nil {
					fmt.Println(err)
					continue
				}
			}
			if err := sess.Filters().SetRooms(ns); err != nil {
				fmt.Println(err)
				continue
			}
			printFilters(sess)

		case "apply":
			sess.ApplyNow()
			printList(sess.List())

		case "more":
			if err := sess.List().LoadMore(ctx); err != nil {
				fmt.Println(err)
				continue
			}
			printList(sess.List())

		case "limit":
			if len(args) != 1 {
				fmt.Println("want limit <n>")
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fmt.Printf("bad page size %q\n", args[0])
				continue
			}
			if err := sess.List().SetLimit(n); err != nil {
				fmt.Println(err)
				continue
			}
			// the size change empties the list; reload with the committed filters
			p := sess.Filters().Params()
			if err := sess.List().ApplyFilters(ctx, &p); err != nil {
				fmt.Println(err)
				continue
			}
			printList(sess.List())

		case "sort":
			switch strings.Join(args, " ") {
			case "title":
				sess.SortByTitle()
			case "price":
				sess.SortByPrice(true)
			case "price-desc", "price desc":
				sess.SortByPrice(false)
			default:
				fmt.Println("want sort title | price | price-desc")
				continue
			}
			printList(sess.List())

		case "show", "ls":
			printList(sess.List())

		case "filters":
			printFilters(sess)

		case "url":
			fmt.Printf("?%s\n", loc.RawQuery())

		case "go":
			if len(args) == 0 {
				fmt.Println("want go <query>, e.g. go priceMin=2000000&priceMax=9000000")
				continue
			}
			loc.Navigate(strings.Join(args, "&"))
			printList(sess.List())

		case "reset":
			if err := sess.Reset(ctx); err != nil {
				fmt.Println(err)
				continue
			}
			printList(sess.List())

		case "retry":
			if err := sess.Retry(ctx); err != nil {
				fmt.Println(err)
				continue
			}
			printList(sess.List())

		default:
			fmt.Printf("unknown command %q (help for commands)\n", cmd)
		}
	}
}

func printHelp() {
	fmt.Print(`commands:
  price <min> <max>   set the price range (- for an open side, lone - clears)
  area <min> <max>    set the area range
  floor <min> <max>   set the floor range
  room <n>            toggle one room count
  rooms <a,b,c>       set the room counts (rooms - clears)
  apply               apply pending filter edits now
  more                load the next page
  limit <n>           change the page size and reload
  sort <title|price|price-desc>
  show                print the loaded list
  filters             print the committed filters and dataset bounds
  url                 print the current query string
  go <query>          navigate to a query string, back/forward style
  reset               clear filters, list, URL and saved selection
  retry               retry after a failed load
  quit

filter edits settle after a short quiet window; apply skips the wait
`)
}

func printList(list *liststore.Store) {
	snap := list.Snapshot()
	if snap.Err != "" {
		fmt.Printf("error: %s\n", snap.Err)
		return
	}
	if len(snap.Apartments) == 0 {
		fmt.Println("no apartments match")
		return
	}
	for _, a := range snap.Apartments {
		pr.Printf("  %-5s %-32s %14d  %6.1f m²  %dr  %d/%d\n",
			a.ID, trunc(a.Title, 32), a.Price, a.Area, a.Rooms, a.Floor, a.TotalFloors)
	}
	more := ""
	if snap.HasMore {
		more = " (more available)"
	}
	pr.Printf("%d of %d loaded, page %d x %d%s\n",
		len(snap.Apartments), snap.Total, snap.Page, snap.Limit, more)
}

func printFilters(sess *session.Session) {
	snap := sess.Filters().Snapshot()
	meta := sess.Filters().Meta()

	if enc := urlstate.Effective(snap.Params, meta).Encode(); enc != "" {
		fmt.Printf("filters: %s\n", enc)
	} else {
		fmt.Println("filters: none")
	}
	if snap.Err != "" {
		fmt.Printf("rejected: %s\n", snap.Err)
	}
	if !meta.IsZero() {
		pr.Printf("bounds: price %d-%d, area %.1f-%.1f m², floors %d-%d, rooms %v\n",
			meta.PriceRange.Min, meta.PriceRange.Max,
			meta.AreaRange.Min, meta.AreaRange.Max,
			meta.FloorsRange.Min, meta.FloorsRange.Max,
			meta.RoomsAvailable)
	}
}

// int64Bounds parses "<min> <max>" range arguments where either side may
// be "-" for open; a lone "-" clears both sides
func int64Bounds(args []string) (*int64, *int64, error) {
	a, b, err := boundArgs(args)
	if err != nil {
		return nil, nil, err
	}
	var lo, hi *int64
	if a != "" {
		n, perr := strconv.ParseInt(a, 10, 64)
		if perr != nil {
			return nil, nil, fmt.Errorf("bad min %q", a)
		}
		lo = &n
	}
	if b != "" {
		n, perr := strconv.ParseInt(b, 10, 64)
		if perr != nil {
			return nil, nil, fmt.Errorf("bad max %q", b)
		}
		hi = &n
	}
	return lo, hi, nil
}

func floatBounds(args []string) (*float64, *float64, error) {
	a, b, err := boundArgs(args)
	if err != nil {
		return nil, nil, err
	}
	var lo, hi *float64
	if a != "" {
		n, perr := strconv.ParseFloat(a, 64)
		if perr != nil {
			return nil, nil, fmt.Errorf("bad min %q", a)
		}
		lo = &n
	}
	if b != "" {
		n, perr := strconv.ParseFloat(b, 64)
		if perr != nil {
			return nil, nil, fmt.Errorf("bad max %q", b)
		}
		hi = &n
	}
	return lo, hi, nil
}

func intBounds(args []string) (*int, *int, error) {
	a, b, err := boundArgs(args)
	if err != nil {
		return nil, nil, err
	}
	var lo, hi *int
	if a != "" {
		n, perr := strconv.Atoi(a)
		if perr != nil {
			return nil, nil, fmt.Errorf("bad min %q", a)
		}
		lo = &n
	}
	if b != "" {
		n, perr := strconv.Atoi(b)
		if perr != nil {
			return nil, nil, fmt.Errorf("bad max %q", b)
		}
		hi = &n
	}
	return lo, hi, nil
}

func boundArgs(args []string) (string, string, error) {
	switch len(args) {
	case 1:
		if args[0] == "-" {
			return "", "", nil
		}
	case 2:
		a, b := args[0], args[1]
		if a == "-" {
			a = ""
		}
		if b == "-" {
			b = ""
		}
		return a, b, nil
	}
	return "", "", fmt.Errorf("want <min> <max>, - for an open side")
}

func parseRooms(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("bad room count %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func trunc(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
