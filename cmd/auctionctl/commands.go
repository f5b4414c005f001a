package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"auction-factory-sol/internal/logic/geyser"
	"auction-factory-sol/internal/logic/phase"
	"auction-factory-sol/internal/service"
	"auction-factory-sol/internal/svc"
	"auction-factory-sol/internal/tools"
	"auction-factory-sol/internal/types"
	"auction-factory-sol/pkg/logger"

	solTypes "github.com/blocto/solana-go-sdk/types"
	zerosvc "github.com/zeromicro/go-zero/core/service"
)

type command struct {
	usage   string
	minArgs int
	run     func(ctx context.Context, sc *svc.ServiceContext, args []string) error
}

var commandOrder = []string{
	"factory", "config", "auction", "current", "history", "metadata",
	"init-config", "init-factory", "add-uris", "toggle", "modify-data", "set-treasury", "set-authority",
	"create", "mint", "supply", "bid", "settle", "close", "watch",
}

var commands = map[string]command{
	"factory":       {usage: "", run: runFactory},
	"config":        {usage: "", run: runConfig},
	"auction":       {usage: "<seq>", minArgs: 1, run: runAuction},
	"current":       {usage: "", run: runCurrent},
	"history":       {usage: "<from> <to>", minArgs: 2, run: runHistory},
	"metadata":      {usage: "<mint>", minArgs: 1, run: runMetadata},
	"init-config":   {usage: "<max_supply>", minArgs: 1, run: runInitConfig},
	"init-factory":  {usage: "<duration_sec> <time_buffer_sec> <min_increase_pct> <reserve_sol> <treasury>", minArgs: 5, run: runInitFactory},
	"add-uris":      {usage: "<file>  (one uri per line)", minArgs: 1, run: runAddUris},
	"toggle":        {usage: "", run: runToggle},
	"modify-data":   {usage: "<duration_sec> <time_buffer_sec> <min_increase_pct> <reserve_sol>", minArgs: 4, run: runModifyData},
	"set-treasury":  {usage: "<treasury>", minArgs: 1, run: runSetTreasury},
	"set-authority": {usage: "<new_authority>", minArgs: 1, run: runSetAuthority},
	"create":        {usage: "", run: runCreate},
	"mint":          {usage: "[seq]", run: runMint},
	"supply":        {usage: "[seq]", run: runSupply},
	"bid":           {usage: "<seq> <sol>", minArgs: 2, run: runBid},
	"settle":        {usage: "<seq>", minArgs: 1, run: runSettle},
	"close":         {usage: "<seq>", minArgs: 1, run: runClose},
	"watch":         {usage: "", run: runWatch},
}

func runFactory(ctx context.Context, sc *svc.ServiceContext, _ []string) error {
	factory, err := sc.Auction.ValidateFactoryInitialized(ctx)
	if err != nil {
		return err
	}
	printFactory(factory)
	return nil
}

func runConfig(ctx context.Context, sc *svc.ServiceContext, _ []string) error {
	cfg, err := sc.Auction.ValidateConfigInitialized(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("config      %s\n", cfg.Address.ToBase58())
	fmt.Printf("max_supply  %d\n", cfg.MaxSupply)
	fmt.Printf("update_idx  %d (updated=%v)\n", cfg.UpdateIdx, cfg.IsUpdated)
	fmt.Printf("entries     %d (full=%v, next write=%d)\n", len(cfg.Buffer), cfg.IsFull(), cfg.NextWriteIndex())
	for i, uri := range cfg.Buffer {
		fmt.Printf("  [%d] %s\n", i, uri)
	}
	return nil
}

func runAuction(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	seq, err := parseSeq(args[0])
	if err != nil {
		return err
	}
	factory, err := sc.Auction.ValidateFactoryInitialized(ctx)
	if err != nil {
		return err
	}
	a, err := sc.Auction.FetchAuctionBySequence(ctx, seq)
	if err != nil {
		return err
	}
	printAuction(ctx, sc, factory, a)
	return nil
}

func runCurrent(ctx context.Context, sc *svc.ServiceContext, _ []string) error {
	factory, a, err := sc.Auction.FetchCurrentAuction(ctx)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	p := phase.Classify(factory, a, now)
	fmt.Printf("phase       %s\n", p)
	if p == phase.PhaseCreate {
		fmt.Printf("next step   %s\n", phase.NextCreateStep(factory, a, now))
	}
	if a == nil {
		fmt.Println("no auction yet")
		return nil
	}
	printAuction(ctx, sc, factory, a)
	return nil
}

func runHistory(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	from, err := parseSeq(args[0])
	if err != nil {
		return err
	}
	to, err := parseSeq(args[1])
	if err != nil {
		return err
	}
	auctions, err := sc.Auction.FetchAuctions(ctx, from, to)
	if err != nil {
		return err
	}
	now := time.Now().Unix()
	for _, a := range auctions {
		bidder := "-"
		if a.HasBidder() {
			bidder = a.Bidder.ToBase58()
		}
		fmt.Printf("#%-5d %-13s %12s SOL  %s\n", a.Sequence, phase.StateOf(a, now), tools.FormatAmount(a.Amount, false), bidder)
	}
	return nil
}

func runMetadata(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	mint, err := types.TryPubkeyFromBase58(args[0])
	if err != nil {
		return err
	}
	uri, err := sc.MetadataCache.Lookup(ctx, mint)
	if err != nil {
		return err
	}
	fmt.Println(uri)
	return nil
}

func runInitConfig(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	maxSupply, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		return fmt.Errorf("invalid max_supply %q: %w", args[0], err)
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.InitializeConfig(ctx, uint32(maxSupply), payer)
	})
}

func runInitFactory(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	data, err := parseFactoryData(args)
	if err != nil {
		return err
	}
	treasury, err := types.TryPubkeyFromBase58(args[4])
	if err != nil {
		return err
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.InitializeFactory(ctx, data, treasury, payer)
	})
}

func runModifyData(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	data, err := parseFactoryData(args)
	if err != nil {
		return err
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.ModifyFactoryData(ctx, data, payer)
	})
}

func runSetTreasury(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	treasury, err := types.TryPubkeyFromBase58(args[0])
	if err != nil {
		return err
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.UpdateTreasury(ctx, treasury, payer)
	})
}

func runSetAuthority(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	authority, err := types.TryPubkeyFromBase58(args[0])
	if err != nil {
		return err
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.UpdateAuthority(ctx, authority, payer)
	})
}

// parseFactoryData <duration_sec> <time_buffer_sec> <min_increase_pct> <reserve_sol>
func parseFactoryData(args []string) (types.AuctionFactoryData, error) {
	var nums [3]uint64
	for i := range nums {
		v, err := strconv.ParseUint(args[i], 10, 64)
		if err != nil {
			return types.AuctionFactoryData{}, fmt.Errorf("invalid argument %q: %w", args[i], err)
		}
		nums[i] = v
	}
	reserve, err := parseSol(args[3])
	if err != nil {
		return types.AuctionFactoryData{}, err
	}
	return types.AuctionFactoryData{
		Duration:                 nums[0],
		TimeBuffer:               nums[1],
		MinBidPercentageIncrease: nums[2],
		MinReservePrice:          reserve,
	}, nil
}

func runAddUris(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	uris, err := readLines(args[0])
	if err != nil {
		return err
	}
	payer, err := sc.Payer()
	if err != nil {
		return err
	}
	sigs, err := sc.Auction.AddUrisToConfig(ctx, uris, payer)
	for _, sig := range sigs {
		fmt.Println(sig)
	}
	return err
}

func runToggle(ctx context.Context, sc *svc.ServiceContext, _ []string) error {
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.ToggleFactoryStatus(ctx, payer)
	})
}

func runCreate(ctx context.Context, sc *svc.ServiceContext, _ []string) error {
	factory, err := sc.Auction.ValidateFactoryInitialized(ctx)
	if err != nil {
		return err
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.CreateAuction(ctx, factory.Sequence+1, payer)
	})
}

func runMint(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	seq, err := seqOrCurrent(ctx, sc, args)
	if err != nil {
		return err
	}
	mint := solTypes.NewAccount()
	fmt.Printf("mint        %s\n", mint.PublicKey.ToBase58())
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.MintResourceToAuction(ctx, seq, mint, payer)
	})
}

func runSupply(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	seq, err := seqOrCurrent(ctx, sc, args)
	if err != nil {
		return err
	}
	a, err := sc.Auction.FetchAuctionBySequence(ctx, seq)
	if err != nil {
		return err
	}
	if !a.HasResource() {
		return types.Preconditionf("auction %d has no resource, run mint first", seq)
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.SupplyResource(ctx, seq, *a.Resource, payer)
	})
}

func runBid(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	seq, err := parseSeq(args[0])
	if err != nil {
		return err
	}
	amount, err := parseSol(args[1])
	if err != nil {
		return err
	}

	// 本地预检仅提示，以程序校验为准
	factory, err := sc.Auction.ValidateFactoryInitialized(ctx)
	if err != nil {
		return err
	}
	if a, err := sc.Auction.FetchAuctionBySequence(ctx, seq); err == nil {
		now := time.Now().Unix()
		for _, w := range bidWarnings(factory, a, amount, now) {
			logger.Warnf("%s", w)
		}
		if end, extended := tools.ExtendsAuction(now, a.EndTime, factory.Data.TimeBuffer); extended {
			logger.Infof("临近结束出价，结束时间将顺延至 %s", formatTime(end))
		}
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.PlaceBid(ctx, seq, amount, payer)
	})
}

func runSettle(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	seq, err := parseSeq(args[0])
	if err != nil {
		return err
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.SettleAuction(ctx, seq, payer)
	})
}

func runClose(ctx context.Context, sc *svc.ServiceContext, args []string) error {
	seq, err := parseSeq(args[0])
	if err != nil {
		return err
	}
	a, err := sc.Auction.FetchAuctionBySequence(ctx, seq)
	if err != nil {
		return err
	}
	if !a.HasResource() {
		return types.Preconditionf("auction %d has no resource", seq)
	}
	target, err := sc.Auction.CloseTargetFor(seq, *a.Resource)
	if err != nil {
		return err
	}
	return withPayer(sc, func(payer solTypes.Account) (string, error) {
		return sc.Auction.CloseResourceTokenAccount(ctx, target, payer)
	})
}

func runWatch(ctx context.Context, sc *svc.ServiceContext, _ []string) error {
	if err := sc.EnablePublisher(); err != nil {
		return err
	}
	var publisher service.EventPublisher
	if sc.Publisher != nil {
		publisher = sc.Publisher
	}

	c := sc.Config
	watch := service.NewAuctionWatchService(sc.Auction, sc.ProgressManager, publisher, service.WatchOption{
		Interval:   time.Duration(c.Watch.IntervalSec) * time.Second,
		Topic:      c.KafkaProducerConf.Topic,
		Partitions: int32(c.KafkaProducerConf.Partitions),
	})

	sg := zerosvc.NewServiceGroup()
	sg.Add(watch)

	if c.Geyser.Endpoint != "" {
		factoryAddr, _, err := sc.Auction.FactoryAddress()
		if err != nil {
			return err
		}
		stream, err := geyser.NewAccountStream(c.Geyser, factoryAddr, sc.Auction.ProgramID(), func(geyser.AccountUpdate) {
			watch.Trigger()
		})
		if err != nil {
			return err
		}
		sg.Add(stream)
	}

	logger.Infof("Starting auction watch service")
	go sg.Start()

	<-ctx.Done()
	logger.Infof("Shutting down services...")
	sg.Stop()
	return nil
}

func printFactory(f *types.AuctionFactory) {
	fmt.Printf("factory     %s\n", f.Address.ToBase58())
	fmt.Printf("authority   %s\n", f.Authority.ToBase58())
	fmt.Printf("active      %v (since %s)\n", f.IsActive, formatTime(f.ActiveSince))
	fmt.Printf("sequence    %d\n", f.Sequence)
	fmt.Printf("duration    %ds, time buffer %ds\n", f.Data.Duration, f.Data.TimeBuffer)
	fmt.Printf("min raise   %d%%, reserve %s SOL\n", f.Data.MinBidPercentageIncrease, tools.FormatAmount(f.Data.MinReservePrice, false))
	fmt.Printf("treasury    %s\n", f.Treasury.ToBase58())
	fmt.Printf("config      %s\n", f.Config.ToBase58())
}

func printAuction(ctx context.Context, sc *svc.ServiceContext, f *types.AuctionFactory, a *types.Auction) {
	now := time.Now().Unix()
	fmt.Printf("auction     #%d %s\n", a.Sequence, a.Address.ToBase58())
	fmt.Printf("state       %s\n", phase.StateOf(a, now))
	fmt.Printf("window      %s -> %s (%ds left)\n", formatTime(a.StartTime), formatTime(a.EndTime), tools.SecondsRemaining(now, a.EndTime))
	if a.HasResource() {
		fmt.Printf("resource    %s\n", a.Resource.ToBase58())
		if uri := sc.MetadataCache.Get(ctx, *a.Resource); uri != "" {
			fmt.Printf("uri         %s\n", uri)
		}
	}
	if a.HasBidder() {
		fmt.Printf("leader      %s (%s SOL)\n", a.Bidder.ToBase58(), tools.FormatAmount(a.Amount, false))
	}
	fmt.Printf("min bid     %s SOL\n", tools.FormatAmount(minimumBid(f, a), false))
	for _, b := range a.BidHistory() {
		fmt.Printf("  %s  %12s SOL  %s\n", formatTime(b.UpdatedAt), tools.FormatAmount(b.Amount, false), b.Bidder.ToBase58())
	}
}

// bidWarnings 出价前的本地预检：状态、出价窗口、最小加价
func bidWarnings(f *types.AuctionFactory, a *types.Auction, amount uint64, now int64) []string {
	var warns []string
	if st := phase.StateOf(a, now); !st.AcceptsBids() {
		warns = append(warns, fmt.Sprintf("拍卖 #%d 当前状态为 %s，不接受出价", a.Sequence, st))
	} else if !tools.IsBiddingOpen(now, a.StartTime, a.EndTime) {
		warns = append(warns, fmt.Sprintf("拍卖 #%d 尚未开始，开始时间 %s", a.Sequence, formatTime(a.StartTime)))
	}
	if !tools.IsBidSufficient(amount, a.Amount, f.Data.MinBidPercentageIncrease, f.Data.MinReservePrice) {
		warns = append(warns, fmt.Sprintf("出价 %s SOL 低于最小要求 %s SOL，程序可能拒绝",
			tools.FormatAmount(amount, false), tools.FormatAmount(minimumBid(f, a), false)))
	}
	return warns
}

// minimumBid 首次出价取保留价，之后按最小加价比例
func minimumBid(f *types.AuctionFactory, a *types.Auction) uint64 {
	if !a.HasBidder() {
		return max(f.Data.MinReservePrice, 1)
	}
	return tools.MinimumNextBid(a.Amount, f.Data.MinBidPercentageIncrease)
}

func withPayer(sc *svc.ServiceContext, fn func(payer solTypes.Account) (string, error)) error {
	payer, err := sc.Payer()
	if err != nil {
		return err
	}
	sig, err := fn(payer)
	if err != nil {
		return err
	}
	fmt.Println(sig)
	return nil
}

func seqOrCurrent(ctx context.Context, sc *svc.ServiceContext, args []string) (uint64, error) {
	if len(args) > 0 {
		return parseSeq(args[0])
	}
	factory, err := sc.Auction.ValidateFactoryInitialized(ctx)
	if err != nil {
		return 0, err
	}
	if factory.Sequence == 0 {
		return 0, types.Preconditionf("no auction created yet")
	}
	return factory.Sequence, nil
}

func parseSeq(s string) (uint64, error) {
	seq, err := strconv.ParseUint(s, 10, 64)
	if err != nil || seq == 0 {
		return 0, fmt.Errorf("invalid auction sequence %q", s)
	}
	return seq, nil
}

func parseSol(s string) (uint64, error) {
	sol, err := tools.ParseSol(s)
	if err != nil {
		return 0, err
	}
	return tools.ToLamports(sol)
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

func formatTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).Format("2006-01-02 15:04:05")
}
