package finance

import (
	"time"

	"obrafin/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FinancialSummary struct {
	OrcamentoTotal  decimal.Decimal `json:"orcamentoTotal"`
	TotalGasto      decimal.Decimal `json:"totalGasto"`
	SaldoRestante   decimal.Decimal `json:"saldoRestante"`
	StatusOrcamento string          `json:"statusOrcamento"`
	PercentualGasto string          `json:"percentualGasto"`
}

type CollectionTotal struct {
	Total      decimal.Decimal `json:"total"`
	Quantidade int             `json:"quantidade"`
}

type WeeklyTotals struct {
	Total      decimal.Decimal `json:"total"`
	Efetuados  decimal.Decimal `json:"efetuados"`
	Pendentes  decimal.Decimal `json:"pendentes"`
	Quantidade int             `json:"quantidade"`
}

type SpendingBreakdown struct {
	Materiais          CollectionTotal `json:"materiais"`
	Contratos          CollectionTotal `json:"contratos"`
	PagamentosSemanais WeeklyTotals    `json:"pagamentosSemanais"`
}

type ScheduleSummary struct {
	TotalEtapas         int `json:"totalEtapas"`
	Concluidas          int `json:"concluidas"`
	EmAndamento         int `json:"emAndamento"`
	Previstas           int `json:"previstas"`
	Atrasadas           int `json:"atrasadas"`
	PercentualConcluido int `json:"percentualConcluido"`
}

// Report is the financial report of one ledger.
type Report struct {
	Obra               model.LedgerProject `json:"obra"`
	ResumoFinanceiro   FinancialSummary    `json:"resumoFinanceiro"`
	DetalhamentoGastos SpendingBreakdown   `json:"detalhamentoGastos"`
	Cronograma         ScheduleSummary     `json:"cronograma"`
	DiasRestantes      int                 `json:"diasRestantes"`
}

// BuildReport assembles the full financial report for l as of now.
func BuildReport(l model.Ledger, now time.Time) Report {
	spent := TotalSpent(l)

	schedule := ScheduleSummary{
		TotalEtapas:         len(l.Cronograma),
		PercentualConcluido: ScheduleCompletion(l),
	}
	for _, s := range l.Cronograma {
		switch s.Status {
		case model.StageDone:
			schedule.Concluidas++
		case model.StageInProgress:
			schedule.EmAndamento++
		case model.StagePlanned:
			schedule.Previstas++
		case model.StageLate:
			schedule.Atrasadas++
		}
	}

	return Report{
		Obra: l.Obra,
		ResumoFinanceiro: FinancialSummary{
			OrcamentoTotal:  l.Obra.Orcamento,
			TotalGasto:      spent,
			SaldoRestante:   l.Obra.Orcamento.Sub(spent),
			StatusOrcamento: ClassifyBudget(spent, l.Obra.Orcamento),
			PercentualGasto: SpentPercentage(spent, l.Obra.Orcamento).StringFixed(2),
		},
		DetalhamentoGastos: SpendingBreakdown{
			Materiais: CollectionTotal{Total: sumExpenses(l.Gastos), Quantidade: len(l.Gastos)},
			Contratos: CollectionTotal{Total: sumContracts(l.Contratos), Quantidade: len(l.Contratos)},
			PagamentosSemanais: WeeklyTotals{
				Total:      sumWeekly(l.PagamentosSemanais, nil),
				Efetuados:  sumWeekly(l.PagamentosSemanais, withWeeklyStatus(model.WeeklyPaid)),
				Pendentes:  sumWeekly(l.PagamentosSemanais, withWeeklyStatus(model.WeeklyToPay)),
				Quantidade: len(l.PagamentosSemanais),
			},
		},
		Cronograma:    schedule,
		DiasRestantes: DaysRemaining(l, now),
	}
}

func withWeeklyStatus(status string) func(model.WeeklyPayment) bool {
	return func(w model.WeeklyPayment) bool { return w.Status == status }
}

// WeeklyEntry is a weekly payment annotated with the ledger it belongs to.
type WeeklyEntry struct {
	ObraID           uuid.UUID           `json:"obraId"`
	ObraNome         string              `json:"obraNome"`
	PagamentoSemanal model.WeeklyPayment `json:"pagamentoSemanal"`
}

// WeeklyFilter narrows weekly payments; zero values match everything.
type WeeklyFilter struct {
	Semana int    `json:"semana,omitempty"`
	Ano    int    `json:"ano,omitempty"`
	Status string `json:"status,omitempty"`
}

func (f WeeklyFilter) matches(w model.WeeklyPayment) bool {
	return (f.Semana == 0 || w.Semana == f.Semana) &&
		(f.Ano == 0 || w.Ano == f.Ano) &&
		(f.Status == "" || w.Status == f.Status)
}

// CollectWeekly flattens matching weekly payments across ledgers, keeping
// ledger order and the order of payments within each ledger.
func CollectWeekly(ledgers []model.Ledger, f WeeklyFilter) []WeeklyEntry {
	entries := make([]WeeklyEntry, 0)
	for _, l := range ledgers {
		for _, w := range l.PagamentosSemanais {
			if !f.matches(w) {
				continue
			}
			entries = append(entries, WeeklyEntry{
				ObraID:           l.ID,
				ObraNome:         l.Obra.Nome,
				PagamentoSemanal: w,
			})
		}
	}
	return entries
}

type WeeklySummary struct {
	TotalPagamentos int             `json:"totalPagamentos"`
	ValorTotal      decimal.Decimal `json:"valorTotal"`
	Filtros         WeeklyFilter    `json:"filtros"`
}

// SummarizeWeekly totals a set of collected weekly entries.
func SummarizeWeekly(entries []WeeklyEntry, f WeeklyFilter) WeeklySummary {
	total := decimal.Zero
	for _, e := range entries {
		w := e.PagamentoSemanal
		total = total.Add(WeeklyTotal(w.ValorPagar, w.ValorVA, w.ValorVT))
	}
	return WeeklySummary{TotalPagamentos: len(entries), ValorTotal: total, Filtros: f}
}
