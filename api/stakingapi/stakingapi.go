// Copyright (c) 2025 The StakeMesh developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package stakingapi exposes the ledger's read-only query surface over HTTP,
// for off-chain monitoring and UIs.
package stakingapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/stakemesh/stakemesh/api/utils"
	"github.com/stakemesh/stakemesh/mesh"
	"github.com/stakemesh/stakemesh/staking"
)

type StakingAPI struct {
	staker *staking.Staker
}

func New(staker *staking.Staker) *StakingAPI {
	return &StakingAPI{staker}
}

func (s *StakingAPI) handleGetValidators(w http.ResponseWriter, _ *http.Request) error {
	infos, err := s.staker.Validators()
	if err != nil {
		return err
	}
	out := make([]*Validator, 0, len(infos))
	for _, info := range infos {
		out = append(out, convertValidator(info.ID, info.Validator))
	}
	return utils.WriteJSON(w, out)
}

func (s *StakingAPI) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	v, err := s.staker.GetValidator(id)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertValidator(id, v))
}

func (s *StakingAPI) handleGetCommission(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	history, err := s.staker.CommissionHistory(id)
	if err != nil {
		return err
	}
	tokens, err := s.staker.Tokens()
	if err != nil {
		return err
	}

	out := Commission{
		History: make([]CommissionCheckpoint, 0, len(history)),
		Accrued: make([]CommissionTokenAmount, 0, len(tokens)),
	}
	for _, cp := range history {
		out.History = append(out.History, CommissionCheckpoint{Timestamp: cp.Timestamp, Rate: dec(cp.Rate)})
	}
	for _, token := range tokens {
		accrued, err := s.staker.AccruedCommission(id, token)
		if err != nil {
			return err
		}
		out.Accrued = append(out.Accrued, CommissionTokenAmount{Token: token, Amount: dec(accrued)})
	}
	return utils.WriteJSON(w, out)
}

func (s *StakingAPI) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	account, err := s.staker.GetAccount(addr)
	if err != nil {
		return err
	}
	ids, err := s.staker.ValidatorsOf(addr)
	if err != nil {
		return err
	}
	entries := make([]StakeEntry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.staker.GetEntry(addr, id)
		if err != nil {
			return err
		}
		entries = append(entries, StakeEntry{
			Validator: uint64(id),
			Amount:    dec(entry.Amount),
			StakedAt:  entry.StakedAt,
		})
	}
	return utils.WriteJSON(w, convertAccount(account, entries))
}

func (s *StakingAPI) handleGetRewards(w http.ResponseWriter, req *http.Request) error {
	addr, err := parseAddress(req)
	if err != nil {
		return err
	}
	previews, err := s.staker.EarnedAll(addr)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, convertPreviews(previews))
}

func (s *StakingAPI) handleGetTokens(w http.ResponseWriter, _ *http.Request) error {
	tokens, err := s.staker.Tokens()
	if err != nil {
		return err
	}
	out := make([]*Token, 0, len(tokens))
	for _, token := range tokens {
		entry, err := s.staker.GetToken(token)
		if err != nil {
			return err
		}
		out = append(out, convertToken(token, entry))
	}
	return utils.WriteJSON(w, out)
}

func (s *StakingAPI) handleGetTotals(w http.ResponseWriter, _ *http.Request) error {
	staked, unbonding, err := s.staker.Totals()
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, Totals{Staked: dec(staked), Unbonding: dec(unbonding)})
}

func parseID(req *http.Request) (mesh.ValidatorID, error) {
	id, err := mesh.ParseValidatorID(mux.Vars(req)["id"])
	if err != nil {
		return 0, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func parseAddress(req *http.Request) (mesh.Address, error) {
	addr, err := mesh.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return mesh.Address{}, utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return addr, nil
}

func (s *StakingAPI) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/validators").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetValidators))
	sub.Path("/validators/{id}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetValidator))
	sub.Path("/validators/{id}/commission").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetCommission))
	sub.Path("/accounts/{address}").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetAccount))
	sub.Path("/accounts/{address}/rewards").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetRewards))
	sub.Path("/tokens").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTokens))
	sub.Path("/totals").
		Methods(http.MethodGet).
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTotals))
}
