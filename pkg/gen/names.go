package gen

import (
	"fmt"

	"cost-to-serve/pkg/rng"
)

// Company name parts for the synthetic customer master. Flavored for the
// Portuguese wholesale market the seed data comes from.
var (
	nameLeads = []string{
		"Atlantico", "Tejo", "Douro", "Alfama", "Belem", "Sintra", "Cascais",
		"Minho", "Alentejo", "Algarve", "Estrela", "Marques", "Baixa", "Chiado",
		"Ribeira", "Foz", "Aveiro", "Braga", "Coimbra", "Setubal", "Lusitania",
		"Iberia", "Vasco", "Serra",
	}
	nameCores = []string{
		"Foods", "Catering", "Hospitality", "Provisions", "Gourmet", "Market",
		"Supplies", "Kitchens", "Trading", "Mercearia", "Restaurante", "Cafe",
		"Hotelaria", "Pastelaria", "Distribution", "Wholesale",
	}
	nameSuffixes = []string{
		"Lda", "SA", "& Filhos", "Group", "Unipessoal", "& Irmaos", "Co", "Norte",
	}
)

func companyName(r *rng.Rand) string {
	return r.Choice(nameLeads) + " " + r.Choice(nameCores) + " " + r.Choice(nameSuffixes)
}

func customerID(n int) string {
	return fmt.Sprintf("CUST-%03d", n)
}

func salesRep(n int) string {
	return fmt.Sprintf("REP-%02d", n)
}
