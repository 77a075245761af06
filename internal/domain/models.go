// Package domain holds the wire models and error types shared by the
// client. Field names follow the platform API contract, which speaks
// Portuguese (valor, saldo, titulo...), so JSON tags are kept verbatim.
package domain

import "time"

// ============================================================
// User & session
// ============================================================

// User is the profile returned by POST /api/login and GET /api/profile.
type User struct {
	ID          int     `json:"id"`
	CPF         string  `json:"cpf"`
	Email       string  `json:"email"`
	Nome        string  `json:"nome"`
	Saldo       float64 `json:"saldo"`
	DataCriacao string  `json:"data_criacao"`
	Ativo       bool    `json:"ativo"`
}

// LoginRequest is the body for POST /api/login.
type LoginRequest struct {
	CPF   string `json:"cpf"`
	Senha string `json:"senha"`
}

// LoginResponse is returned by POST /api/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// RegisterRequest is the body for POST /api/register.
type RegisterRequest struct {
	CPF   string `json:"cpf"`
	Email string `json:"email"`
	Nome  string `json:"nome"`
	Senha string `json:"senha"`
}

// Ack is the generic {"message": ...} acknowledgement several
// mutation endpoints return.
type Ack struct {
	Message string `json:"message"`
}

// ============================================================
// Offers (investable instruments)
// ============================================================

// OfferStatus is the availability of an offer for new applications.
type OfferStatus string

const (
	OfferAvailable OfferStatus = "disponivel"
	OfferExhausted OfferStatus = "esgotado"
)

var offerStatusLabels = map[OfferStatus]string{
	OfferAvailable: "Disponível",
	OfferExhausted: "Esgotado",
}

// Valid reports whether the status is one the client knows about.
func (s OfferStatus) Valid() bool {
	_, ok := offerStatusLabels[s]
	return ok
}

// Label returns the display text for the status. Unknown values fall
// back to the raw wire value so a new server-side status still renders.
func (s OfferStatus) Label() string {
	if l, ok := offerStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Category is the fixed-income category of an offer.
type Category string

const (
	CategoryDebentures            Category = "debentures"
	CategoryCRI                   Category = "cri"
	CategoryCRA                   Category = "cra"
	CategoryNotasFiscais          Category = "notas_fiscais"
	CategoryRecebiveisJudiciais   Category = "recebiveis_judiciais"
	CategoryOperacoesEstruturadas Category = "operacoes_estruturadas"
	CategoryPrecatoriosFederal    Category = "precatorios_federal"
	CategoryPrecatoriosEstadual   Category = "precatorios_estadual"
	CategoryPrecatoriosMunicipal  Category = "precatorios_municipal"
)

var categoryLabels = map[Category]string{
	CategoryDebentures:            "Debêntures",
	CategoryCRI:                   "CRI",
	CategoryCRA:                   "CRA",
	CategoryNotasFiscais:          "Notas Fiscais",
	CategoryRecebiveisJudiciais:   "Recebíveis Judiciais",
	CategoryOperacoesEstruturadas: "Operações Estruturadas",
	CategoryPrecatoriosFederal:    "Precatórios Federal",
	CategoryPrecatoriosEstadual:   "Precatórios Estadual",
	CategoryPrecatoriosMunicipal:  "Precatórios Municipal",
}

// Valid reports whether the category is one the client knows about.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// Label returns the display text for the category, falling back to the
// raw wire value for unknown categories.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// CategoryOption is one entry of GET /api/investments/categories.
type CategoryOption struct {
	Value Category `json:"value"`
	Label string   `json:"label"`
}

// Offer is an investable fixed-income instrument as listed by
// GET /api/investments. It is an immutable snapshot: status and
// valor_captado may change between fetches as other users invest.
type Offer struct {
	ID             int         `json:"id"`
	Titulo         string      `json:"titulo"`
	Descricao      string      `json:"descricao"`
	Categoria      Category    `json:"categoria"`
	ValorMinimo    float64     `json:"valor_minimo"`
	TaxaRetorno    float64     `json:"taxa_retorno"` // % per year
	Prazo          int         `json:"prazo"`        // months
	Status         OfferStatus `json:"status"`
	IsencaoIR      bool        `json:"isencao_ir"`
	ValorTotal     float64     `json:"valor_total"`
	ValorCaptado   float64     `json:"valor_captado"`
	DataCriacao    string      `json:"data_criacao"`
	DataVencimento string      `json:"data_vencimento"`
}

// Available reports whether the offer accepts new applications.
func (o Offer) Available() bool {
	return o.Status == OfferAvailable
}

// InvestRequest is the body for POST /api/investir/{id}.
type InvestRequest struct {
	Valor float64 `json:"valor"`
}

// InvestResponse is returned by a successful POST /api/investir/{id}.
// SaldoRestante is informational only; the authoritative balance always
// comes from a subsequent GET /api/saldo.
type InvestResponse struct {
	Message       string  `json:"message"`
	SaldoRestante float64 `json:"saldo_restante"`
}

// ============================================================
// Holdings
// ============================================================

// Holding is one entry of GET /api/meus_investimentos: the offer data
// plus the user's applied amount and application timestamp.
type Holding struct {
	ID            int      `json:"id"`
	Titulo        string   `json:"titulo"`
	Categoria     Category `json:"categoria"`
	TaxaRetorno   float64  `json:"taxa_retorno"`
	Prazo         int      `json:"prazo"`
	ValorAplicado float64  `json:"valor_aplicado"`
	DataAplicacao string   `json:"data_aplicacao"`
}

// AppliedAt parses the application timestamp.
func (h Holding) AppliedAt() time.Time {
	return parseAPITime(h.DataAplicacao)
}

// ============================================================
// Balance & transactions
// ============================================================

// Balance is the response of GET /api/saldo.
type Balance struct {
	Saldo float64 `json:"saldo"`
}

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposito"
	TypeInvestment TransactionType = "investimento"
	TypeRedemption TransactionType = "resgate"
)

var transactionTypeLabels = map[TransactionType]string{
	TypeDeposit:    "Depósito",
	TypeInvestment: "Investimento",
	TypeRedemption: "Resgate",
}

// Valid reports whether the type is one the client knows about.
func (t TransactionType) Valid() bool {
	_, ok := transactionTypeLabels[t]
	return ok
}

// Label returns the display text for the type, falling back to the raw
// wire value for unknown types.
func (t TransactionType) Label() string {
	if l, ok := transactionTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// TransactionStatus is the server-side settlement state. Transitions
// happen server-side only; the client observes them via re-fetch.
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "pendente"
	StatusApproved TransactionStatus = "aprovado"
	StatusRejected TransactionStatus = "rejeitado"
)

var transactionStatusLabels = map[TransactionStatus]string{
	StatusPending:  "Pendente",
	StatusApproved: "Aprovado",
	StatusRejected: "Rejeitado",
}

// Valid reports whether the status is one the client knows about.
func (s TransactionStatus) Valid() bool {
	_, ok := transactionStatusLabels[s]
	return ok
}

// Label returns the display text for the status, falling back to the
// raw wire value for unknown statuses.
func (s TransactionStatus) Label() string {
	if l, ok := transactionStatusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Transaction is one entry of GET /api/transacoes.
type Transaction struct {
	ID            int               `json:"id"`
	Tipo          TransactionType   `json:"tipo"`
	Valor         float64           `json:"valor"`
	Status        TransactionStatus `json:"status"`
	Descricao     string            `json:"descricao"`
	DataCriacao   string            `json:"data_criacao"`
	DataAprovacao string            `json:"data_aprovacao,omitempty"`
	PixID         string            `json:"pix_id,omitempty"`
}

// CreatedAt parses the creation timestamp.
func (t Transaction) CreatedAt() time.Time {
	return parseAPITime(t.DataCriacao)
}

// parseAPITime handles the timestamp formats the platform emits:
// RFC3339 or a bare ISO timestamp without zone.
func parseAPITime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02T15:04:05", s); err == nil {
		return t
	}
	t, _ := time.Parse("2006-01-02", s)
	return t
}

// AccountSnapshot is the merged account view produced by one
// all-or-nothing refresh. TotalInvested is derived from Holdings on
// every refresh, never cached independently.
type AccountSnapshot struct {
	User          User
	Balance       float64
	Holdings      []Holding
	Transactions  []Transaction
	TotalInvested float64
	FetchedAt     time.Time
}

// ============================================================
// PIX deposit
// ============================================================

// DepositRequest is the body for POST /api/gerar_pix and the legacy
// POST /api/depositar.
type DepositRequest struct {
	Valor float64 `json:"valor"`
}

// DepositResponse is returned by the legacy POST /api/depositar.
type DepositResponse struct {
	Message       string `json:"message"`
	TransactionID int    `json:"transaction_id"`
}

// BankDetails are the payee banking details shown alongside a PIX
// charge so the user can pay out-of-band.
type BankDetails struct {
	Favorecido string `json:"favorecido"`
	CNPJ       string `json:"cnpj"`
	Banco      string `json:"banco"`
	Agencia    string `json:"agencia"`
	Conta      string `json:"conta"`
	ChavePix   string `json:"chave_pix"`
}

// PixCharge is the payment request returned by POST /api/gerar_pix:
// a rendering surface (base64 PNG QR code) plus structured payee
// details and a copyable key.
type PixCharge struct {
	PixID          string      `json:"pix_id"`
	Valor          float64     `json:"valor"`
	QRCode         string      `json:"qr_code"`
	DadosBancarios BankDetails `json:"dados_bancarios"`
	TransactionID  int         `json:"transaction_id"`
}
