package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peerbr/invest-client-go/internal/account"
	"github.com/peerbr/invest-client-go/internal/deposit"
	"github.com/peerbr/invest-client-go/internal/domain"
	"github.com/peerbr/invest-client-go/internal/infra/observability"
	"github.com/peerbr/invest-client-go/internal/invest"
	"github.com/peerbr/invest-client-go/internal/session"
	"github.com/peerbr/invest-client-go/internal/transport"

	"go.uber.org/zap"
)

// repl is the terminal front-end. It holds no domain state of its own
// beyond the last offer listing (to resolve invest commands by ID);
// everything authoritative lives behind the session and the aggregator.
type repl struct {
	sess     *session.Manager
	accounts *account.Aggregator
	catalog  *invest.Catalog
	invest   *invest.Flow
	api      *transport.Client
	metrics  *observability.Metrics
	logger   *zap.Logger

	in  *bufio.Scanner
	out io.Writer

	lastOffers map[int]domain.Offer
}

func newREPL(sess *session.Manager, accounts *account.Aggregator, catalog *invest.Catalog, investFlow *invest.Flow, api *transport.Client, metrics *observability.Metrics, logger *zap.Logger, in io.Reader, out io.Writer) *repl {
	return &repl{
		sess:       sess,
		accounts:   accounts,
		catalog:    catalog,
		invest:     investFlow,
		api:        api,
		metrics:    metrics,
		logger:     logger,
		in:         bufio.NewScanner(in),
		out:        out,
		lastOffers: map[int]domain.Offer{},
	}
}

func (r *repl) run(ctx context.Context) {
	if u := r.sess.User(); u != nil {
		fmt.Fprintf(r.out, "Bem-vindo de volta, %s\n", u.Nome)
	} else {
		fmt.Fprintln(r.out, "PeerBR — digite 'login' para entrar ou 'help' para ajuda")
	}

	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Fprint(r.out, "> ")
		if !r.in.Scan() {
			return
		}
		fields := strings.Fields(r.in.Text())
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		switch cmd {
		case "login":
			r.cmdLogin(ctx, args)
		case "register":
			r.cmdRegister(ctx)
		case "logout":
			r.sess.Logout()
			fmt.Fprintln(r.out, "Sessão encerrada")
		case "categories":
			r.cmdCategories(ctx)
		case "offers":
			r.cmdOffers(ctx, args)
		case "invest":
			r.cmdInvest(ctx, args)
		case "account":
			r.cmdAccount(ctx, false)
		case "refresh":
			r.cmdAccount(ctx, true)
		case "deposit":
			r.cmdDeposit(ctx)
		case "deposit-legacy":
			r.cmdDepositLegacy(ctx, args)
		case "stats":
			r.cmdStats()
		case "help":
			r.printHelp()
		case "sair", "exit", "quit":
			return
		default:
			fmt.Fprintf(r.out, "Comando desconhecido: %s (use 'help')\n", cmd)
		}
	}
}

func (r *repl) printHelp() {
	fmt.Fprint(r.out, `Comandos:
  login <cpf>            entrar na plataforma
  register               criar conta
  logout                 sair
  offers [categoria]     listar ofertas disponíveis
  categories             listar categorias
  invest <id> <valor>    investir em uma oferta
  account                ver saldo, investimentos e transações
  refresh                recarregar dados da conta
  deposit                depositar via PIX
  deposit-legacy <valor> depósito direto (contrato antigo)
  stats                  estatísticas do cliente
  sair                   encerrar
`)
}

// fail prints a flow error. An auth-shaped failure also tears the
// session down, so the user is told to log in again.
func (r *repl) fail(err error) {
	if r.sess.ObserveError(err) {
		fmt.Fprintln(r.out, "Sessão expirada. Faça login novamente.")
		return
	}
	fmt.Fprintln(r.out, err.Error())
}

func (r *repl) requireLogin() bool {
	if r.sess.Authenticated() {
		return true
	}
	fmt.Fprintln(r.out, "Faça login primeiro")
	return false
}

func (r *repl) prompt(label string) (string, bool) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func (r *repl) cmdLogin(ctx context.Context, args []string) {
	cpf := ""
	if len(args) > 0 {
		cpf = args[0]
	} else {
		var ok bool
		if cpf, ok = r.prompt("CPF: "); !ok {
			return
		}
	}
	senha, ok := r.prompt("Senha: ")
	if !ok {
		return
	}

	user, err := r.sess.Login(ctx, cpf, senha)
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintf(r.out, "Bem-vindo, %s\n", user.Nome)
}

func (r *repl) cmdRegister(ctx context.Context) {
	nome, ok := r.prompt("Nome: ")
	if !ok {
		return
	}
	cpf, ok := r.prompt("CPF: ")
	if !ok {
		return
	}
	email, ok := r.prompt("Email: ")
	if !ok {
		return
	}
	senha, ok := r.prompt("Senha: ")
	if !ok {
		return
	}

	ack, err := r.sess.Register(ctx, &domain.RegisterRequest{
		Nome:  nome,
		CPF:   cpf,
		Email: email,
		Senha: senha,
	})
	if err != nil {
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, ack.Message)
}

func (r *repl) cmdCategories(ctx context.Context) {
	if !r.requireLogin() {
		return
	}
	opts, err := r.catalog.Categories(ctx)
	if err != nil {
		r.fail(err)
		return
	}
	for _, o := range opts {
		fmt.Fprintf(r.out, "  %-24s %s\n", o.Value, o.Label)
	}
}

func (r *repl) cmdOffers(ctx context.Context, args []string) {
	if !r.requireLogin() {
		return
	}
	categoria := domain.Category("")
	if len(args) > 0 {
		categoria = domain.Category(args[0])
	}

	offers, err := r.catalog.Offers(ctx, categoria)
	if err != nil {
		r.fail(err)
		return
	}
	r.showOffers(offers)
}

func (r *repl) showOffers(offers []domain.Offer) {
	r.lastOffers = map[int]domain.Offer{}
	if len(offers) == 0 {
		fmt.Fprintln(r.out, "Nenhum investimento encontrado")
		return
	}
	for _, o := range offers {
		r.lastOffers[o.ID] = o
		ir := ""
		if o.IsencaoIR {
			ir = "  isento de IR"
		}
		fmt.Fprintf(r.out, "  [%d] %s (%s)\n      %.2f%% a.a. | %d meses | mínimo %s | %s%s\n",
			o.ID, o.Titulo, o.Categoria.Label(),
			o.TaxaRetorno, o.Prazo, domain.FormatBRL(o.ValorMinimo), o.Status.Label(), ir,
		)
	}
}

func (r *repl) cmdInvest(ctx context.Context, args []string) {
	if !r.requireLogin() {
		return
	}
	if len(args) < 2 {
		fmt.Fprintln(r.out, "Uso: invest <id> <valor>")
		return
	}

	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintln(r.out, "Oferta inválida")
		return
	}
	offer, ok := r.lastOffers[id]
	if !ok {
		fmt.Fprintln(r.out, "Oferta desconhecida; liste com 'offers' primeiro")
		return
	}
	if !offer.Available() {
		// Same rule as the web client: exhausted offers cannot be
		// submitted from the UI at all.
		fmt.Fprintln(r.out, "Investimento não está disponível")
		return
	}

	result, err := r.invest.Invest(ctx, offer, args[1])
	if err != nil {
		r.fail(err)
		return
	}

	fmt.Fprintln(r.out, result.Message)
	if result.RefreshErr != nil {
		r.fail(result.RefreshErr)
		return
	}
	if result.Snapshot != nil {
		fmt.Fprintf(r.out, "Saldo disponível: %s\n", domain.FormatBRL(result.Snapshot.Balance))
	}
	if result.Offers != nil {
		r.showOffers(result.Offers)
	}
}

func (r *repl) cmdAccount(ctx context.Context, force bool) {
	if !r.requireLogin() {
		return
	}

	var snap *domain.AccountSnapshot
	var err error
	if force {
		r.accounts.Invalidate()
		snap, err = r.accounts.Refresh(ctx)
	} else {
		snap, err = r.accounts.View(ctx)
	}
	if err != nil {
		r.fail(err)
		return
	}

	fmt.Fprintf(r.out, "Conta de %s\n", snap.User.Nome)
	fmt.Fprintf(r.out, "Saldo disponível:  %s\n", domain.FormatBRL(snap.Balance))
	fmt.Fprintf(r.out, "Total investido:   %s (%d aplicações)\n", domain.FormatBRL(snap.TotalInvested), len(snap.Holdings))

	if len(snap.Holdings) > 0 {
		fmt.Fprintln(r.out, "Meus investimentos:")
		for _, h := range snap.Holdings {
			fmt.Fprintf(r.out, "  %-30s %s | %.2f%% a.a. | %d meses | %s\n",
				h.Titulo, domain.FormatBRL(h.ValorAplicado), h.TaxaRetorno, h.Prazo,
				h.AppliedAt().Format("02/01/2006"),
			)
		}
	}

	if len(snap.Transactions) > 0 {
		fmt.Fprintln(r.out, "Transações:")
		for _, t := range snap.Transactions {
			fmt.Fprintf(r.out, "  %-12s %-10s %s  %s\n",
				t.Tipo.Label(), t.Status.Label(), domain.FormatBRL(t.Valor),
				t.CreatedAt().Format("02/01/2006 15:04"),
			)
		}
	}
}

// cmdDeposit runs one PIX deposit interaction. Every invocation starts
// a fresh flow instance; nothing carries over from previous attempts.
func (r *repl) cmdDeposit(ctx context.Context) {
	if !r.requireLogin() {
		return
	}

	flow := deposit.NewFlow(r.api, r.accounts, r.metrics, r.logger)
	defer flow.Close()

	prefill := ""
	for flow.Phase() == deposit.PhaseAmountEntry {
		label := "Valor do depósito (R$): "
		if prefill != "" {
			label = fmt.Sprintf("Valor do depósito (R$) [%s]: ", prefill)
		}
		raw, ok := r.prompt(label)
		if !ok {
			return
		}
		if raw == "" && prefill != "" {
			raw = prefill
		}
		if raw == "" {
			return
		}

		charge, err := flow.Generate(ctx, raw)
		if err != nil {
			r.fail(err)
			if domain.IsValidation(err) {
				continue
			}
			return
		}
		r.showCharge(charge)

		for flow.Phase() == deposit.PhaseInstructions {
			action, ok := r.prompt("[confirmar/voltar/fechar]: ")
			if !ok {
				return
			}
			switch action {
			case "confirmar":
				snap, err := flow.ConfirmCompletion(ctx)
				if err != nil {
					r.fail(err)
				} else if snap != nil {
					fmt.Fprintln(r.out, "Depósito registrado! Aguarde a aprovação para que o valor seja creditado em sua conta.")
				}
				return
			case "voltar":
				if err := flow.Back(); err != nil {
					r.fail(err)
					return
				}
				prefill = flow.Amount()
			case "fechar":
				flow.Close()
				return
			default:
				fmt.Fprintln(r.out, "Opções: confirmar, voltar, fechar")
			}
		}
	}
}

func (r *repl) showCharge(charge *domain.PixCharge) {
	d := charge.DadosBancarios
	fmt.Fprintf(r.out, "Valor:      %s\n", domain.FormatBRL(charge.Valor))
	fmt.Fprintf(r.out, "Favorecido: %s\n", d.Favorecido)
	fmt.Fprintf(r.out, "CNPJ:       %s\n", d.CNPJ)
	fmt.Fprintf(r.out, "Banco:      %s\n", d.Banco)
	fmt.Fprintf(r.out, "Agência:    %s   Conta: %s\n", d.Agencia, d.Conta)
	fmt.Fprintf(r.out, "Chave PIX:  %s\n", d.ChavePix)
	fmt.Fprintln(r.out, "Escaneie o QR Code no app do seu banco ou use a chave PIX acima.")
	fmt.Fprintln(r.out, "Após o pagamento, o valor será creditado após aprovação.")
}

func (r *repl) cmdDepositLegacy(ctx context.Context, args []string) {
	if !r.requireLogin() {
		return
	}
	if len(args) < 1 {
		fmt.Fprintln(r.out, "Uso: deposit-legacy <valor>")
		return
	}

	resp, snap, err := deposit.Direct(ctx, r.api, r.accounts, args[0])
	if err != nil {
		if resp != nil {
			// deposit went through, only the refresh failed
			fmt.Fprintln(r.out, resp.Message)
		}
		r.fail(err)
		return
	}
	fmt.Fprintln(r.out, resp.Message)
	if snap != nil {
		fmt.Fprintf(r.out, "Saldo disponível: %s\n", domain.FormatBRL(snap.Balance))
	}
}

func (r *repl) cmdStats() {
	s := r.metrics.Snapshot()
	fmt.Fprintf(r.out, "Refreshes:      %.0f ok, %.0f com erro\n", s.RefreshesOK, s.RefreshesFailed)
	fmt.Fprintf(r.out, "Investimentos:  %.0f\n", s.Invested)
	fmt.Fprintf(r.out, "Depósitos:      %.0f\n", s.Deposits)
	fmt.Fprintf(r.out, "Cache hit rate: %.0f%%\n", s.CacheHitRate*100)
}
