package service

import (
	"strconv"
	"strings"
	"time"

	"obrafin/internal/model"

	"github.com/shopspring/decimal"
)

var (
	ledgerStatuses   = []string{model.LedgerPlanning, model.LedgerInProgress, model.LedgerDone, model.LedgerPaused, model.LedgerCancelled}
	stageStatuses    = []string{model.StagePlanned, model.StageInProgress, model.StageDone, model.StageLate}
	weeklyStatuses   = []string{model.WeeklyToPay, model.WeeklyPaid, model.WeeklyCancelled}
	contractStatuses = []string{model.LedgerContractActive, model.LedgerContractDone, model.LedgerContractCancelled}
)

func (p problems) oneOf(field string, v *string, allowed []string) {
	if v == nil {
		return
	}
	for _, a := range allowed {
		if *v == a {
			return
		}
	}
	p.add(field, "must be one of: "+strings.Join(allowed, ", "))
}

func (p problems) between(field string, v *int, lo, hi int) {
	if v != nil && (*v < lo || *v > hi) {
		p.add(field, "must be between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
	}
}

type LedgerProjectRequest struct {
	Nome             string           `json:"nome" binding:"required,max=255"`
	DataInicio       string           `json:"dataInicio" binding:"required,isodate"`
	DataFinalEntrega string           `json:"dataFinalEntrega" binding:"required,isodate"`
	Orcamento        *decimal.Decimal `json:"orcamento" binding:"required"`
	Descricao        string           `json:"descricao"`
	Endereco         string           `json:"endereco"`
	Responsavel      string           `json:"responsavel"`
	Status           string           `json:"status"`
}

type UpdateLedgerProjectRequest struct {
	Nome             *string          `json:"nome" binding:"omitempty,max=255"`
	DataInicio       *string          `json:"dataInicio" binding:"omitempty,isodate"`
	DataFinalEntrega *string          `json:"dataFinalEntrega" binding:"omitempty,isodate"`
	Orcamento        *decimal.Decimal `json:"orcamento"`
	Descricao        *string          `json:"descricao"`
	Endereco         *string          `json:"endereco"`
	Responsavel      *string          `json:"responsavel"`
	Status           *string          `json:"status"`
}

func buildLedgerProject(v problems, req LedgerProjectRequest) model.LedgerProject {
	v.requireText("obra.nome", &req.Nome)
	v.nonNegative("obra.orcamento", req.Orcamento)
	status := orDefault(req.Status, model.LedgerPlanning)
	v.oneOf("obra.status", &status, ledgerStatuses)
	return model.LedgerProject{
		Nome:             req.Nome,
		DataInicio:       v.date("obra.dataInicio", req.DataInicio),
		DataFinalEntrega: v.date("obra.dataFinalEntrega", req.DataFinalEntrega),
		Orcamento:        amount(req.Orcamento),
		Descricao:        req.Descricao,
		Endereco:         req.Endereco,
		Responsavel:      req.Responsavel,
		Status:           status,
	}
}

func applyLedgerProject(v problems, o *model.LedgerProject, req UpdateLedgerProjectRequest) {
	v.requireText("nome", req.Nome)
	v.nonNegative("orcamento", req.Orcamento)
	v.oneOf("status", req.Status, ledgerStatuses)
	if req.Nome != nil {
		o.Nome = *req.Nome
	}
	if req.DataInicio != nil {
		o.DataInicio = v.date("dataInicio", *req.DataInicio)
	}
	if req.DataFinalEntrega != nil {
		o.DataFinalEntrega = v.date("dataFinalEntrega", *req.DataFinalEntrega)
	}
	if req.Orcamento != nil {
		o.Orcamento = *req.Orcamento
	}
	if req.Descricao != nil {
		o.Descricao = *req.Descricao
	}
	if req.Endereco != nil {
		o.Endereco = *req.Endereco
	}
	if req.Responsavel != nil {
		o.Responsavel = *req.Responsavel
	}
	if req.Status != nil {
		o.Status = *req.Status
	}
}

// Gastos

type LedgerExpenseRequest struct {
	Descricao   string           `json:"descricao" binding:"required,max=500"`
	Categoria   string           `json:"categoria" binding:"required,max=100"`
	Valor       *decimal.Decimal `json:"valor" binding:"required"`
	Data        *string          `json:"data" binding:"omitempty,isodate"`
	Fornecedor  string           `json:"fornecedor"`
	Observacoes string           `json:"observacoes"`
}

type UpdateLedgerExpenseRequest struct {
	Descricao   *string          `json:"descricao" binding:"omitempty,max=500"`
	Categoria   *string          `json:"categoria" binding:"omitempty,max=100"`
	Valor       *decimal.Decimal `json:"valor"`
	Data        *string          `json:"data" binding:"omitempty,isodate"`
	Fornecedor  *string          `json:"fornecedor"`
	Observacoes *string          `json:"observacoes"`
}

func buildLedgerExpense(v problems, prefix string, req LedgerExpenseRequest, now time.Time) model.LedgerExpense {
	v.requireText(prefix+"descricao", &req.Descricao)
	v.requireText(prefix+"categoria", &req.Categoria)
	v.nonNegative(prefix+"valor", req.Valor)
	data := now.UTC()
	if d := v.optionalDate(prefix+"data", req.Data); d != nil {
		data = *d
	}
	return model.LedgerExpense{
		Descricao:   req.Descricao,
		Categoria:   req.Categoria,
		Valor:       amount(req.Valor),
		Data:        data,
		Fornecedor:  req.Fornecedor,
		Observacoes: req.Observacoes,
	}
}

func applyLedgerExpense(v problems, e *model.LedgerExpense, req UpdateLedgerExpenseRequest) {
	v.requireText("descricao", req.Descricao)
	v.requireText("categoria", req.Categoria)
	v.nonNegative("valor", req.Valor)
	if req.Descricao != nil {
		e.Descricao = *req.Descricao
	}
	if req.Categoria != nil {
		e.Categoria = *req.Categoria
	}
	if req.Valor != nil {
		e.Valor = *req.Valor
	}
	if req.Data != nil {
		if d := v.optionalDate("data", req.Data); d != nil {
			e.Data = *d
		}
	}
	if req.Fornecedor != nil {
		e.Fornecedor = *req.Fornecedor
	}
	if req.Observacoes != nil {
		e.Observacoes = *req.Observacoes
	}
}

// Contratos

type LedgerContractRequest struct {
	NomeContratado string           `json:"nomeContratado" binding:"required,max=255"`
	Servico        string           `json:"servico" binding:"required,max=255"`
	ValorTotal     *decimal.Decimal `json:"valorTotal" binding:"required"`
	DataInicio     string           `json:"dataInicio" binding:"required,isodate"`
	DataFim        *string          `json:"dataFim" binding:"omitempty,isodate"`
	Status         string           `json:"status" binding:"omitempty,oneof=ativo concluido cancelado"`
	Observacoes    string           `json:"observacoes"`
}

type UpdateLedgerContractRequest struct {
	NomeContratado *string          `json:"nomeContratado" binding:"omitempty,max=255"`
	Servico        *string          `json:"servico" binding:"omitempty,max=255"`
	ValorTotal     *decimal.Decimal `json:"valorTotal"`
	DataInicio     *string          `json:"dataInicio" binding:"omitempty,isodate"`
	DataFim        *string          `json:"dataFim" binding:"omitempty,isodate"`
	Status         *string          `json:"status" binding:"omitempty,oneof=ativo concluido cancelado"`
	Observacoes    *string          `json:"observacoes"`
}

func buildLedgerContract(v problems, prefix string, req LedgerContractRequest) model.LedgerContract {
	v.requireText(prefix+"nomeContratado", &req.NomeContratado)
	v.requireText(prefix+"servico", &req.Servico)
	v.nonNegative(prefix+"valorTotal", req.ValorTotal)
	status := orDefault(req.Status, model.LedgerContractActive)
	v.oneOf(prefix+"status", &status, contractStatuses)
	c := model.LedgerContract{
		NomeContratado: req.NomeContratado,
		Servico:        req.Servico,
		ValorTotal:     amount(req.ValorTotal),
		DataInicio:     v.date(prefix+"dataInicio", req.DataInicio),
		DataFim:        v.optionalDate(prefix+"dataFim", req.DataFim),
		Status:         status,
		Observacoes:    req.Observacoes,
	}
	v.notBefore(prefix+"dataFim", c.DataInicio, c.DataFim, "must not be before dataInicio")
	return c
}

func applyLedgerContract(v problems, c *model.LedgerContract, req UpdateLedgerContractRequest) {
	v.requireText("nomeContratado", req.NomeContratado)
	v.requireText("servico", req.Servico)
	v.nonNegative("valorTotal", req.ValorTotal)
	v.oneOf("status", req.Status, contractStatuses)
	if req.NomeContratado != nil {
		c.NomeContratado = *req.NomeContratado
	}
	if req.Servico != nil {
		c.Servico = *req.Servico
	}
	if req.ValorTotal != nil {
		c.ValorTotal = *req.ValorTotal
	}
	if req.DataInicio != nil {
		c.DataInicio = v.date("dataInicio", *req.DataInicio)
	}
	if req.DataFim != nil {
		c.DataFim = v.optionalDate("dataFim", req.DataFim)
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.Observacoes != nil {
		c.Observacoes = *req.Observacoes
	}
	v.notBefore("dataFim", c.DataInicio, c.DataFim, "must not be before dataInicio")
}

// Cronograma

type ScheduleStageRequest struct {
	Etapa               string  `json:"etapa" binding:"required,max=255"`
	Descricao           string  `json:"descricao"`
	DataInicio          string  `json:"dataInicio" binding:"required,isodate"`
	DataFim             *string `json:"dataFim" binding:"omitempty,isodate"`
	Status              string  `json:"status"`
	Responsavel         string  `json:"responsavel"`
	PercentualConcluido *int    `json:"percentualConcluido"`
}

type UpdateScheduleStageRequest struct {
	Etapa               *string `json:"etapa" binding:"omitempty,max=255"`
	Descricao           *string `json:"descricao"`
	DataInicio          *string `json:"dataInicio" binding:"omitempty,isodate"`
	DataFim             *string `json:"dataFim" binding:"omitempty,isodate"`
	Status              *string `json:"status"`
	Responsavel         *string `json:"responsavel"`
	PercentualConcluido *int    `json:"percentualConcluido"`
}

func buildScheduleStage(v problems, prefix string, req ScheduleStageRequest) model.ScheduleStage {
	v.requireText(prefix+"etapa", &req.Etapa)
	status := orDefault(req.Status, model.StagePlanned)
	v.oneOf(prefix+"status", &status, stageStatuses)
	v.between(prefix+"percentualConcluido", req.PercentualConcluido, 0, 100)
	s := model.ScheduleStage{
		Etapa:       req.Etapa,
		Descricao:   req.Descricao,
		DataInicio:  v.date(prefix+"dataInicio", req.DataInicio),
		DataFim:     v.optionalDate(prefix+"dataFim", req.DataFim),
		Status:      status,
		Responsavel: req.Responsavel,
	}
	if req.PercentualConcluido != nil {
		s.PercentualConcluido = *req.PercentualConcluido
	}
	v.notBefore(prefix+"dataFim", s.DataInicio, s.DataFim, "must not be before dataInicio")
	return s
}

func applyScheduleStage(v problems, s *model.ScheduleStage, req UpdateScheduleStageRequest) {
	v.requireText("etapa", req.Etapa)
	v.oneOf("status", req.Status, stageStatuses)
	v.between("percentualConcluido", req.PercentualConcluido, 0, 100)
	if req.Etapa != nil {
		s.Etapa = *req.Etapa
	}
	if req.Descricao != nil {
		s.Descricao = *req.Descricao
	}
	if req.DataInicio != nil {
		s.DataInicio = v.date("dataInicio", *req.DataInicio)
	}
	if req.DataFim != nil {
		s.DataFim = v.optionalDate("dataFim", req.DataFim)
	}
	if req.Status != nil {
		s.Status = *req.Status
	}
	if req.Responsavel != nil {
		s.Responsavel = *req.Responsavel
	}
	if req.PercentualConcluido != nil {
		s.PercentualConcluido = *req.PercentualConcluido
	}
	v.notBefore("dataFim", s.DataInicio, s.DataFim, "must not be before dataInicio")
}

// Pagamentos semanais. totalReceber is never read from clients.

type WeeklyPaymentRequest struct {
	Nome           string           `json:"nome"`
	Funcao         string           `json:"funcao"`
	ChavePix       string           `json:"chavePix"`
	Semana         *int             `json:"semana" binding:"required"`
	Ano            *int             `json:"ano" binding:"required"`
	ValorPagar     *decimal.Decimal `json:"valorPagar" binding:"required"`
	ValorVA        *decimal.Decimal `json:"valorVA"`
	ValorVT        *decimal.Decimal `json:"valorVT"`
	DataVencimento *string          `json:"dataVencimento" binding:"omitempty,isodate"`
	Status         string           `json:"status"`
	Observacoes    string           `json:"observacoes"`
}

type UpdateWeeklyPaymentRequest struct {
	Nome           *string          `json:"nome"`
	Funcao         *string          `json:"funcao"`
	ChavePix       *string          `json:"chavePix"`
	Semana         *int             `json:"semana"`
	Ano            *int             `json:"ano"`
	ValorPagar     *decimal.Decimal `json:"valorPagar"`
	ValorVA        *decimal.Decimal `json:"valorVA"`
	ValorVT        *decimal.Decimal `json:"valorVT"`
	DataVencimento *string          `json:"dataVencimento" binding:"omitempty,isodate"`
	Status         *string          `json:"status"`
	Observacoes    *string          `json:"observacoes"`
}

// markPaid stamps the payment date on the first transition to paid only.
func markPaid(w *model.WeeklyPayment, now time.Time) {
	if w.Status == model.WeeklyPaid && w.DataPagamentoEfetuado == nil {
		t := now.UTC()
		w.DataPagamentoEfetuado = &t
	}
}

func buildWeeklyPayment(v problems, prefix string, req WeeklyPaymentRequest, now time.Time) model.WeeklyPayment {
	v.between(prefix+"semana", req.Semana, 1, 53)
	v.between(prefix+"ano", req.Ano, 2020, 2050)
	v.nonNegative(prefix+"valorPagar", req.ValorPagar)
	v.nonNegative(prefix+"valorVA", req.ValorVA)
	v.nonNegative(prefix+"valorVT", req.ValorVT)
	status := orDefault(req.Status, model.WeeklyToPay)
	v.oneOf(prefix+"status", &status, weeklyStatuses)
	w := model.WeeklyPayment{
		Nome:           req.Nome,
		Funcao:         req.Funcao,
		ChavePix:       req.ChavePix,
		ValorPagar:     amount(req.ValorPagar),
		ValorVA:        amount(req.ValorVA),
		ValorVT:        amount(req.ValorVT),
		DataVencimento: v.optionalDate(prefix+"dataVencimento", req.DataVencimento),
		Status:         status,
		Observacoes:    req.Observacoes,
	}
	if req.Semana != nil {
		w.Semana = *req.Semana
	}
	if req.Ano != nil {
		w.Ano = *req.Ano
	}
	markPaid(&w, now)
	return w
}

func applyWeeklyPayment(v problems, w *model.WeeklyPayment, req UpdateWeeklyPaymentRequest, now time.Time) {
	v.between("semana", req.Semana, 1, 53)
	v.between("ano", req.Ano, 2020, 2050)
	v.nonNegative("valorPagar", req.ValorPagar)
	v.nonNegative("valorVA", req.ValorVA)
	v.nonNegative("valorVT", req.ValorVT)
	v.oneOf("status", req.Status, weeklyStatuses)
	if req.Nome != nil {
		w.Nome = *req.Nome
	}
	if req.Funcao != nil {
		w.Funcao = *req.Funcao
	}
	if req.ChavePix != nil {
		w.ChavePix = *req.ChavePix
	}
	if req.Semana != nil {
		w.Semana = *req.Semana
	}
	if req.Ano != nil {
		w.Ano = *req.Ano
	}
	if req.ValorPagar != nil {
		w.ValorPagar = *req.ValorPagar
	}
	if req.ValorVA != nil {
		w.ValorVA = *req.ValorVA
	}
	if req.ValorVT != nil {
		w.ValorVT = *req.ValorVT
	}
	if req.DataVencimento != nil {
		w.DataVencimento = v.optionalDate("dataVencimento", req.DataVencimento)
	}
	if req.Status != nil {
		w.Status = *req.Status
	}
	if req.Observacoes != nil {
		w.Observacoes = *req.Observacoes
	}
	markPaid(w, now)
}
