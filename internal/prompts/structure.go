package prompts

import "morningbrief/internal/core"

var sectionBodies = map[core.SectionID]string{
	core.SectionOpening: `
[2-3 frases destacando o que é MAIS IMPORTANTE para o Dr. Orestes HOJE.
Pode ser: preço do café, resultado do São Paulo, decisão econômica, ou notícia global.
Sempre conecte ao impacto direto na vida dele.]

Exemplo:
"O mercado de café apresenta oportunidade de venda com margem de 38% - a maior em três meses.
O Tricolor venceu o clássico ontem e assume a liderança do Paulistão.
O dólar recuou para R$ 5,37, favorecendo exportações da fazenda."`,

	core.SectionCoffee: `
### Indicadores

| Métrica | Valor | Variação |
|---------|-------|----------|
| CEPEA Arábica | R$ X.XXX,XX/saca | +X,X% |
| ICE KC (Mar) | XXX,XX ¢/lb | +X,X% |
| Câmbio BRL/USD | R$ X,XX | +X,X% |
| Custo Total Fazenda | R$ X.XXX,XX/saca | - |
| **Margem Bruta** | **XX,X%** | - |

### Análise
[2-3 frases explicando:
- O que está movendo os preços
- Previsão do tempo para MG nos próximos dias
- Situação no Porto de Santos]

### Recomendação

| Ação | Decisão | Justificativa |
|------|---------|---------------|
| Venda Spot | **VENDER** / **AGUARDAR** | [razão] |
| Hedge Futuro | **FAZER** / **NÃO FAZER** | [razão] |
| Câmbio | **FAVORÁVEL** / **DESFAVORÁVEL** | [razão] |`,

	core.SectionBrazil: `
### Economia

**IBOVESPA**: XXX.XXX pontos (+X,XX%)
[Principais movimentações: Itaú, Bradesco, Vale, Petrobras - mencione os que ele conhece]

**Câmbio**: R$ X,XX por dólar
[Tendência e drivers]

**Juros**: Selic a XX,XX% a.a.
[Última decisão do COPOM e expectativas]

**Inflação**: IPCA em X,XX% (acumulado 12 meses)
[Último dado e tendência]

**Dívida Corporativa**:
[Notícias de reestruturações - área de expertise dele]`,

	core.SectionNationalPolitics: `
[3-5 bullets com as principais notícias políticas do dia]
- Governo Lula: [notícia]
- Congresso: [notícia]
- Fiscal: [notícia]
- Eleições 2026: [notícia se relevante]`,

	core.SectionGlobal: `
### Mercados Internacionais

| Índice | Valor | Variação |
|--------|-------|----------|
| S&P 500 | X.XXX | +X,X% |
| Nasdaq | XX.XXX | +X,X% |
| DAX | XX.XXX | +X,X% |
| Nikkei | XX.XXX | +X,X% |

**Commodities**:
- Petróleo Brent: US$ XX,XX/barril
- Ouro: US$ X.XXX/oz`,

	core.SectionInternationalPolitics: `
[3-5 bullets com principais notícias geopolíticas]
- EUA: [notícia]
- China: [notícia]
- Europa: [notícia]
- Geopolítica: [tensões relevantes]

### Impacto no Brasil
[Como os eventos globais afetam mercados brasileiros]`,

	core.SectionAgribusiness: `
### Além do Café

| Commodity | Preço CEPEA | Variação |
|-----------|-------------|----------|
| Soja | R$ XX,XX/saca | +X,X% |
| Milho | R$ XX,XX/saca | +X,X% |

**Safra**: [perspectivas]
**Exportações**: [volumes e destinos]
**Logística**: [situação portos]`,

	core.SectionSports: `
### São Paulo FC

**Último Jogo**: [Resultado, placar, competição, data]
[Destaque para gols, atuações, análise tática breve]

**Classificação**: Xº lugar no [competição] com XX pontos

**Próximo Jogo**: [Data, adversário, competição, horário]

**Notícias do Clube**:
[Contratações, lesões, declarações relevantes]

### Seleção Brasileira

**Próximo Compromisso**: [Data, adversário, competição]
**Copa do Mundo**: [Grupo, preparação, notícias do técnico]

### Tênis

**ATP Rankings**:
1. [Jogador] - X.XXX pts
2. [Jogador] - X.XXX pts
3. [Jogador] - X.XXX pts

**Brasileiros**: João Fonseca - Xº (X.XXX pts)
[Torneio atual/próximo]

### Fórmula 1

**Campeonato**:
1. [Piloto] - XXX pts
2. [Piloto] - XXX pts
3. [Piloto] - XXX pts

**Última Corrida**: [GP, vencedor]
**Próxima Corrida**: [GP, data, circuito]
**GP Brasil**: [Data, informações se relevante]`,

	core.SectionRealEstate: `
**São Paulo**:
[Tendências do mercado imobiliário paulistano]
- Preços residenciais: [tendência]
- Comercial: [tendência]
- Lançamentos relevantes

**Indicadores**:
- IGPM: X,XX% (mês) / X,XX% (12m)`,

	core.SectionTechnology: `
**Fintechs Brasileiras**:
[Notícias de fintechs, especialmente as relacionadas a bancos e crédito]

**Investimentos**:
[Deals de venture capital relevantes]

**Bancos Digitais**:
[Novidades do setor que ele acompanha]`,

	core.SectionCulture: `
**São Paulo**:
- **MASP**: [Exposição atual]
- **Pinacoteca**: [Exposição atual]
- **Teatro**: [Peças em cartaz]
- **Música**: [Concertos/eventos]

[Recomendação para o fim de semana se for sexta-feira]`,

	core.SectionHealth: `
**Avanços Médicos**:
[Notícias de medicina relevantes para público sênior]

**Longevidade**:
[Pesquisas ou dicas de bem-estar]

**São Paulo**:
[Notícias de saúde na cidade]`,

	core.SectionAgenda: `
### Eventos Econômicos
- [Data]: [Evento - COPOM, IPCA, PIB, etc.]

### Corporativo
- [Data]: [Balanços relevantes]

### Político
- [Data]: [Votações, eventos]

### Esportivo
- [Data]: [Jogos do São Paulo, Seleção, F1]

### Cultural
- [Data]: [Eventos em SP]`,

	core.SectionSources: `
[Lista completa de todas as fontes utilizadas com datas]
- **Café**: CEPEA/ESALQ (XX/XX/XXXX), ICE (XX/XX/XXXX)
- **Economia**: BCB, B3, Valor Econômico
- **Esportes**: ge.globo.com, ESPN, ATP, F1
- **Política**: Agência Brasil, Estadão
[etc.]`,
}
