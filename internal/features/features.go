package features

import (
    "encoding/csv"
    "fmt"
    "os"
    "strconv"
    "strings"
    "time"

    "bosque/internal/data"
)

var cats = []string{"Alimentação", "Transporte", "Taxi", "Pedágio", "Hospedagem"}

// Vectorize codifica uma despesa no vetor numérico que o motor consome;
// categorias viram one-hot aqui, nunca dentro do motor.
func Vectorize(e data.Expense) ([]float64, []string) {
    names := []string{}
    vec := []float64{}

    names = append(names, "Amount")
    vec = append(vec, e.Amount)

    intervalDays := float64(int(e.TravelDate.Sub(e.RequestDate).Hours() / 24))
    names = append(names, "IntervaloSolicitante")
    vec = append(vec, intervalDays)

    names = append(names, "DiaSemana")
    vec = append(vec, float64(int(e.RequestDate.Weekday())))
    names = append(names, "Mes")
    vec = append(vec, float64(int(e.RequestDate.Month())))

    sameApprover := boolToFloat(e.ApproverID == e.RequesterID)
    reqIsTraveller := boolToFloat(e.RequesterID == e.TravellerID)
    valorInteiro := boolToFloat(e.Amount == float64(int(e.Amount)))
    valorMultiplo5 := boolToFloat(int(e.Amount)%5 == 0)
    names = append(names, "MesmoAprovador", "SolicitanteViajante", "ValorInteiro", "ValorMultiplo5")
    vec = append(vec, sameApprover, reqIsTraveller, valorInteiro, valorMultiplo5)

    catLower := strings.ToLower(e.Category)
    for _, c := range cats {
        names = append(names, "Cat_"+c)
        if strings.ToLower(c) == catLower {
            vec = append(vec, 1.0)
        } else {
            vec = append(vec, 0.0)
        }
    }

    return vec, names
}

func boolToFloat(b bool) float64 { if b { return 1.0 } ; return 0.0 }

func BuildExpense(
    expenseID, requestID, requesterID, travellerID, approverID string,
    requestDate, travelDate time.Time,
    category, description string,
    amount float64,
    currency, jobTitle, department, approvalStatus string,
) data.Expense {
    return data.Expense{
        ExpenseID:      expenseID,
        RequestID:      requestID,
        RequesterID:    requesterID,
        TravellerID:    travellerID,
        ApproverID:     approverID,
        RequestDate:    requestDate,
        TravelDate:     travelDate,
        Category:       category,
        Description:    description,
        Amount:         amount,
        Currency:       currency,
        JobTitle:       jobTitle,
        Department:     department,
        ApprovalStatus: approvalStatus,
    }
}

// ExpenseFromRecord monta uma despesa a partir de uma linha do CSV gerado.
func ExpenseFromRecord(row []string) (data.Expense, error) {
    if len(row) < 15 {
        return data.Expense{}, fmt.Errorf("linha com %d colunas, esperadas 15", len(row))
    }
    reqDate, _ := time.Parse("2006-01-02", row[5])
    travelDate, _ := time.Parse("2006-01-02", row[6])
    amount, _ := strconv.ParseFloat(row[9], 64)
    e := BuildExpense(
        row[0], row[1], row[2], row[3], row[4],
        reqDate, travelDate,
        row[7], row[8],
        amount,
        row[10], row[11], row[12], row[13],
    )
    e.Fraud, _ = strconv.Atoi(row[14])
    return e, nil
}

// LoadCSV lê o CSV de despesas e devolve o dataset vetorizado pronto para o
// motor.
func LoadCSV(path string) (*data.Dataset, error) {
    f, err := os.Open(path)
    if err != nil { return nil, err }
    defer f.Close()

    r := csv.NewReader(f)
    rows, err := r.ReadAll()
    if err != nil { return nil, err }
    if len(rows) < 2 {
        return nil, fmt.Errorf("CSV %s sem registros", path)
    }

    d := &data.Dataset{
        X: make([][]float64, 0, len(rows)-1),
        Y: make([]int, 0, len(rows)-1),
    }
    for i := 1; i < len(rows); i++ {
        e, err := ExpenseFromRecord(rows[i])
        if err != nil {
            return nil, fmt.Errorf("linha %d: %w", i, err)
        }
        v, names := Vectorize(e)
        if d.FeatureNames == nil { d.FeatureNames = names }
        d.X = append(d.X, v)
        d.Y = append(d.Y, e.Fraud)
    }
    return d, nil
}
