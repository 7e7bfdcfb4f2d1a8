package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/kerlouan/goswapd/internal/core/amm"
	"github.com/kerlouan/goswapd/internal/core/escrow"
	"github.com/kerlouan/goswapd/internal/core/types"
)

func (s *Server) registerMethods() {
	s.registry["server_info"] = s.serverInfo
	s.registry["pool_list"] = s.poolList
	s.registry["pool_info"] = s.poolInfo
	s.registry["amount_out"] = s.amountOut
	s.registry["required_amount1"] = s.requiredAmount1
	s.registry["preview_path"] = s.previewPath
	s.registry["best_route"] = s.bestRoute
	s.registry["position"] = s.position
	s.registry["deal_info"] = s.dealInfo
}

// poolView is the wire form of a pool's public state.
type poolView struct {
	Token0      string `json:"token0"`
	Token1      string `json:"token1"`
	Reserve0    string `json:"reserve0"`
	Reserve1    string `json:"reserve1"`
	TotalSupply string `json:"total_lp_supply"`
	FeeRateBps  uint16 `json:"fee_rate_bps"`
	FeeAdmin    string `json:"fee_admin"`
}

func viewPool(pool *amm.Pool) poolView {
	r0, r1 := pool.Reserves()
	return poolView{
		Token0:      pool.Token0().String(),
		Token1:      pool.Token1().String(),
		Reserve0:    r0.String(),
		Reserve1:    r1.String(),
		TotalSupply: pool.TotalLPSupply().String(),
		FeeRateBps:  pool.FeeRate(),
		FeeAdmin:    pool.FeeAdmin().String(),
	}
}

func (s *Server) serverInfo(json.RawMessage) (interface{}, *RpcError) {
	info := map[string]interface{}{
		"version":        ServerVersion,
		"uptime_seconds": int64(s.services.Uptime().Seconds()),
		"pool_count":     s.services.Factory.PoolCount(),
		"max_hops":       s.services.MaxHops,
	}
	if s.services.Escrow != nil {
		info["deal_count"] = s.services.Escrow.NextID() - 1
	}
	return info, nil
}

func (s *Server) poolList(json.RawMessage) (interface{}, *RpcError) {
	pools := s.services.Factory.Pools()
	views := make([]poolView, len(pools))
	for i, pool := range pools {
		views[i] = viewPool(pool)
	}
	return map[string]interface{}{"pools": views}, nil
}

type pairParams struct {
	TokenA string `json:"token_a"`
	TokenB string `json:"token_b"`
}

func (s *Server) lookupPool(params json.RawMessage) (*amm.Pool, *RpcError) {
	var p pairParams
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	tokenA, err := types.ParseAddress(p.TokenA)
	if err != nil {
		return nil, errInvalidParams("token_a: " + err.Error())
	}
	tokenB, err := types.ParseAddress(p.TokenB)
	if err != nil {
		return nil, errInvalidParams("token_b: " + err.Error())
	}
	pool, err := s.services.Factory.GetPool(tokenA, tokenB)
	if err != nil {
		return nil, errNotFound(err.Error())
	}
	return pool, nil
}

func (s *Server) poolInfo(params json.RawMessage) (interface{}, *RpcError) {
	pool, rpcErr := s.lookupPool(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	return viewPool(pool), nil
}

func (s *Server) amountOut(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		TokenIn  string `json:"token_in"`
		TokenOut string `json:"token_out"`
		AmountIn string `json:"amount_in"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	tokenIn, err := types.ParseAddress(p.TokenIn)
	if err != nil {
		return nil, errInvalidParams("token_in: " + err.Error())
	}
	tokenOut, err := types.ParseAddress(p.TokenOut)
	if err != nil {
		return nil, errInvalidParams("token_out: " + err.Error())
	}
	amountIn, rpcErr := parseAmount("amount_in", p.AmountIn)
	if rpcErr != nil {
		return nil, rpcErr
	}

	pool, err := s.services.Factory.GetPool(tokenIn, tokenOut)
	if err != nil {
		return nil, errNotFound(err.Error())
	}
	out, fee, err := pool.GetAmountOut(tokenIn, amountIn, tokenOut)
	if err != nil {
		return nil, errEngine(err)
	}
	return map[string]interface{}{
		"amount_out": out.String(),
		"fee":        fee.String(),
	}, nil
}

func (s *Server) requiredAmount1(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		TokenA  string `json:"token_a"`
		TokenB  string `json:"token_b"`
		Amount0 string `json:"amount0"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	pool, rpcErr := s.lookupPool(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount0, rpcErr := parseAmount("amount0", p.Amount0)
	if rpcErr != nil {
		return nil, rpcErr
	}
	amount1, err := pool.GetRequiredAmount1(amount0)
	if err != nil {
		return nil, errEngine(err)
	}
	return map[string]interface{}{"amount1": amount1.String()}, nil
}

func (s *Server) previewPath(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		Path     []string `json:"path"`
		AmountIn string   `json:"amount_in"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	path := make([]types.Address, len(p.Path))
	for i, raw := range p.Path {
		addr, err := types.ParseAddress(raw)
		if err != nil {
			return nil, errInvalidParams(fmt.Sprintf("path[%d]: %v", i, err))
		}
		path[i] = addr
	}
	amountIn, rpcErr := parseAmount("amount_in", p.AmountIn)
	if rpcErr != nil {
		return nil, rpcErr
	}

	quote, err := s.services.Router.PreviewSwapMultiHop(path, amountIn)
	if err != nil {
		return nil, errEngine(err)
	}
	return map[string]interface{}{
		"amount_out":  quote.AmountOut.String(),
		"total_fee":   quote.TotalFee.String(),
		"hop_amounts": amountStrings(quote.HopAmounts),
		"hop_fees":    amountStrings(quote.HopFees),
	}, nil
}

func (s *Server) bestRoute(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		TokenIn  string `json:"token_in"`
		TokenOut string `json:"token_out"`
		AmountIn string `json:"amount_in"`
		MaxHops  int    `json:"max_hops,omitempty"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	tokenIn, err := types.ParseAddress(p.TokenIn)
	if err != nil {
		return nil, errInvalidParams("token_in: " + err.Error())
	}
	tokenOut, err := types.ParseAddress(p.TokenOut)
	if err != nil {
		return nil, errInvalidParams("token_out: " + err.Error())
	}
	amountIn, rpcErr := parseAmount("amount_in", p.AmountIn)
	if rpcErr != nil {
		return nil, rpcErr
	}
	maxHops := p.MaxHops
	if maxHops <= 0 || maxHops > s.services.MaxHops {
		maxHops = s.services.MaxHops
	}

	path, quote, err := s.services.Router.BestRouteQuote(tokenIn, amountIn, tokenOut, maxHops)
	if err != nil {
		return nil, errEngine(err)
	}
	pathStrings := make([]string, len(path))
	for i, addr := range path {
		pathStrings[i] = addr.String()
	}
	return map[string]interface{}{
		"path":       pathStrings,
		"amount_out": quote.AmountOut.String(),
		"total_fee":  quote.TotalFee.String(),
	}, nil
}

func (s *Server) position(params json.RawMessage) (interface{}, *RpcError) {
	var p struct {
		TokenA string `json:"token_a"`
		TokenB string `json:"token_b"`
		Holder string `json:"holder"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	pool, rpcErr := s.lookupPool(params)
	if rpcErr != nil {
		return nil, rpcErr
	}
	holder, err := types.ParseAddress(p.Holder)
	if err != nil {
		return nil, errInvalidParams("holder: " + err.Error())
	}

	amount0, amount1 := pool.UserLiquidityPosition(holder)
	fee0, fee1 := pool.PendingFees(holder)
	return map[string]interface{}{
		"lp_balance":   pool.LPBalance(holder).String(),
		"amount0":      amount0.String(),
		"amount1":      amount1.String(),
		"share_bps":    pool.UserPoolShare(holder),
		"pending_fee0": fee0.String(),
		"pending_fee1": fee1.String(),
	}, nil
}

func (s *Server) dealInfo(params json.RawMessage) (interface{}, *RpcError) {
	if s.services.Escrow == nil {
		return nil, errNotFound("escrow is not enabled")
	}
	var p struct {
		DealID uint64 `json:"deal_id"`
	}
	if rpcErr := decodeParams(params, &p); rpcErr != nil {
		return nil, rpcErr
	}
	deal, err := s.services.Escrow.Deal(p.DealID)
	if err != nil {
		if errors.Is(err, escrow.ErrDealNotFound) {
			return nil, errNotFound(err.Error())
		}
		return nil, errEngine(err)
	}
	return map[string]interface{}{
		"deal_id":    deal.DealID,
		"buyer":      deal.Buyer.String(),
		"seller":     deal.Seller.String(),
		"token":      deal.Token.String(),
		"amount":     deal.Amount.String(),
		"product_id": deal.ProductID,
		"released":   deal.Released,
	}, nil
}

func decodeParams(params json.RawMessage, out interface{}) *RpcError {
	if params == nil {
		return errInvalidParams("missing params")
	}
	if err := json.Unmarshal(params, out); err != nil {
		return errInvalidParams("malformed params: " + err.Error())
	}
	return nil
}

func parseAmount(field, raw string) (*big.Int, *RpcError) {
	if raw == "" {
		return nil, errInvalidParams(field + " is required")
	}
	amount, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return nil, errInvalidParams(field + " must be a decimal integer")
	}
	return amount, nil
}

func amountStrings(amounts []*big.Int) []string {
	out := make([]string, len(amounts))
	for i, amount := range amounts {
		out[i] = amount.String()
	}
	return out
}
