package dex

import (
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"launchlens/internal/model"
)

// EventKind tags the decoded variant carried by a DecodedLog.
type EventKind int

const (
	KindInitialize EventKind = iota + 1
	KindTokenCreated
	KindSwap
)

// DecodedLog is a tagged, validated representation of one raw log.
// Exactly one of the payload pointers is set, matching Kind.
type DecodedLog struct {
	Kind        EventKind
	BlockNumber uint64
	TxHash      string
	LogIndex    uint64
	Address     string

	Initialize   *model.InitializeEvent
	TokenCreated *model.TokenCreatedEvent
	Swap         *model.SwapEvent
}

// DecodeError marks a log that failed schema validation. The offending
// log is skipped and the rest of the batch proceeds.
type DecodeError struct {
	BlockNumber uint64
	TxHash      string
	LogIndex    uint64
	Topic0      string
	Err         error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed log block=%d tx=%s index=%d topic0=%s: %v",
		e.BlockNumber, e.TxHash, e.LogIndex, e.Topic0, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder converts raw PoolManager and factory logs into typed events.
type Decoder struct {
	poolManager abi.ABI
	factory     abi.ABI

	initializeTopic   common.Hash
	swapTopic         common.Hash
	tokenCreatedTopic common.Hash
}

// NewDecoder parses the event ABIs and derives the topic0 hashes from
// them, so filter topics and decode paths can never disagree.
func NewDecoder() (*Decoder, error) {
	pmABI, err := PoolManagerABI()
	if err != nil {
		return nil, fmt.Errorf("parse pool manager abi: %w", err)
	}
	fABI, err := FactoryABI()
	if err != nil {
		return nil, fmt.Errorf("parse factory abi: %w", err)
	}

	return &Decoder{
		poolManager:       pmABI,
		factory:           fABI,
		initializeTopic:   pmABI.Events["Initialize"].ID,
		swapTopic:         pmABI.Events["Swap"].ID,
		tokenCreatedTopic: fABI.Events["TokenCreated"].ID,
	}, nil
}

// Topics returns the topic0 filter set for log fetching.
func (d *Decoder) Topics() []common.Hash {
	return []common.Hash{d.initializeTopic, d.tokenCreatedTopic, d.swapTopic}
}

// CanDecode reports whether the topic0 belongs to a tracked event.
func (d *Decoder) CanDecode(topic0 common.Hash) bool {
	return topic0 == d.initializeTopic || topic0 == d.swapTopic || topic0 == d.tokenCreatedTopic
}

// Decode converts a raw log into its tagged variant. Unknown topics and
// schema mismatches return a *DecodeError.
func (d *Decoder) Decode(log types.Log) (DecodedLog, error) {
	if len(log.Topics) == 0 {
		return DecodedLog{}, d.malformed(log, fmt.Errorf("missing topics"))
	}

	out := DecodedLog{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
	}

	var err error
	switch log.Topics[0] {
	case d.initializeTopic:
		out.Kind = KindInitialize
		out.Initialize, err = d.decodeInitialize(log)
	case d.tokenCreatedTopic:
		out.Kind = KindTokenCreated
		out.TokenCreated, err = d.decodeTokenCreated(log)
	case d.swapTopic:
		out.Kind = KindSwap
		out.Swap, err = d.decodeSwap(log)
	default:
		err = fmt.Errorf("unsupported topic0: %s", log.Topics[0].Hex())
	}
	if err != nil {
		return DecodedLog{}, d.malformed(log, err)
	}

	return out, nil
}

func (d *Decoder) malformed(log types.Log, err error) *DecodeError {
	topic0 := ""
	if len(log.Topics) > 0 {
		topic0 = log.Topics[0].Hex()
	}
	return &DecodeError{
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Topic0:      topic0,
		Err:         err,
	}
}

func (d *Decoder) decodeInitialize(log types.Log) (*model.InitializeEvent, error) {
	event := d.poolManager.Events["Initialize"]

	var indexed struct {
		Id        [32]byte
		Currency0 common.Address
		Currency1 common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return nil, err
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack initialize: %w", err)
	}
	if len(values) != 5 {
		return nil, fmt.Errorf("unexpected initialize values: %d", len(values))
	}

	feeBig, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}
	fee, err := uint24FromBig(feeBig)
	if err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}

	tickSpacingBig, err := asBigInt(values[1])
	if err != nil {
		return nil, err
	}
	tickSpacing, err := int24FromBig(tickSpacingBig)
	if err != nil {
		return nil, fmt.Errorf("tick spacing: %w", err)
	}

	hooks, err := asAddress(values[2])
	if err != nil {
		return nil, fmt.Errorf("hooks: %w", err)
	}

	sqrtPrice, err := asBigInt(values[3])
	if err != nil {
		return nil, fmt.Errorf("sqrt price: %w", err)
	}

	tickBig, err := asBigInt(values[4])
	if err != nil {
		return nil, err
	}
	tick, err := int24FromBig(tickBig)
	if err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}

	return &model.InitializeEvent{
		PoolID:       common.Hash(indexed.Id).Hex(),
		Currency0:    indexed.Currency0.Hex(),
		Currency1:    indexed.Currency1.Hex(),
		Fee:          fee,
		TickSpacing:  tickSpacing,
		Hooks:        hooks.Hex(),
		SqrtPriceX96: sqrtPrice.String(),
		Tick:         tick,
	}, nil
}

func (d *Decoder) decodeTokenCreated(log types.Log) (*model.TokenCreatedEvent, error) {
	event := d.factory.Events["TokenCreated"]

	var indexed struct {
		Token    common.Address
		PoolId   [32]byte
		Deployer common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return nil, err
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack token created: %w", err)
	}
	if len(values) != 3 {
		return nil, fmt.Errorf("unexpected token created values: %d", len(values))
	}

	name, err := asString(values[0])
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	symbol, err := asString(values[1])
	if err != nil {
		return nil, fmt.Errorf("symbol: %w", err)
	}
	totalSupply, err := asBigInt(values[2])
	if err != nil {
		return nil, fmt.Errorf("total supply: %w", err)
	}

	return &model.TokenCreatedEvent{
		Token:       indexed.Token.Hex(),
		PoolID:      common.Hash(indexed.PoolId).Hex(),
		Deployer:    indexed.Deployer.Hex(),
		Name:        name,
		Symbol:      symbol,
		TotalSupply: totalSupply.String(),
	}, nil
}

func (d *Decoder) decodeSwap(log types.Log) (*model.SwapEvent, error) {
	event := d.poolManager.Events["Swap"]

	var indexed struct {
		Id     [32]byte
		Sender common.Address
	}
	if err := parseIndexed(&indexed, event, log.Topics); err != nil {
		return nil, err
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return nil, fmt.Errorf("unpack swap: %w", err)
	}
	if len(values) != 6 {
		return nil, fmt.Errorf("unexpected swap values: %d", len(values))
	}

	amount0, err := asBigInt(values[0])
	if err != nil {
		return nil, err
	}
	amount1, err := asBigInt(values[1])
	if err != nil {
		return nil, err
	}
	sqrtPrice, err := asBigInt(values[2])
	if err != nil {
		return nil, err
	}
	liquidity, err := asBigInt(values[3])
	if err != nil {
		return nil, err
	}
	tickBig, err := asBigInt(values[4])
	if err != nil {
		return nil, err
	}
	tick, err := int24FromBig(tickBig)
	if err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	feeBig, err := asBigInt(values[5])
	if err != nil {
		return nil, err
	}
	fee, err := uint24FromBig(feeBig)
	if err != nil {
		return nil, fmt.Errorf("fee: %w", err)
	}

	return &model.SwapEvent{
		PoolID:       common.Hash(indexed.Id).Hex(),
		Sender:       indexed.Sender.Hex(),
		Amount0:      amount0.String(),
		Amount1:      amount1.String(),
		SqrtPriceX96: sqrtPrice.String(),
		Liquidity:    liquidity.String(),
		Tick:         tick,
		Fee:          fee,
	}, nil
}

func parseIndexed(target interface{}, event abi.Event, topics []common.Hash) error {
	indexed := indexedArguments(event.Inputs)
	if len(topics) != len(indexed)+1 {
		return fmt.Errorf("expected %d topics, got %d", len(indexed)+1, len(topics))
	}
	if err := abi.ParseTopics(target, indexed, topics[1:]); err != nil {
		return fmt.Errorf("parse topics: %w", err)
	}
	return nil
}

func indexedArguments(args abi.Arguments) abi.Arguments {
	indexed := make(abi.Arguments, 0, len(args))
	for _, arg := range args {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return indexed
}
