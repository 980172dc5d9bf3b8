package warehouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Almacen-api/internal/application/dto"
	appevents "github.com/jhoicas/Almacen-api/internal/application/events"
	"github.com/jhoicas/Almacen-api/internal/application/queue"
	"github.com/jhoicas/Almacen-api/internal/domain"
	"github.com/jhoicas/Almacen-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Alta y mutación de líneas
// ──────────────────────────────────────────────────────────────────────────────

func TestAddLine_CreaLineaYReservaVacia(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{})
	require.NoError(t, err)

	line, err := env.lines.AddLine(ctx, order.ID, gtinA)
	require.NoError(t, err)
	assert.Equal(t, order.ID, line.OrderID)
	assert.False(t, line.Fulfilled)

	res, err := env.lines.UpdateLine(ctx, order.ID, line.ID, dto.UpdateLineRequest{})
	require.NoError(t, err)
	assert.False(t, res.Fulfilled, "la reserva existe pero sin inventario")

	assert.Len(t, env.pub.byName(appevents.NameOrderLineCreated), 1)
}

func TestAddLine_GtinInvalido(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{})
	require.NoError(t, err)

	_, err = env.lines.AddLine(ctx, order.ID, "no-es-un-gtin")
	assert.ErrorIs(t, err, domain.ErrInvalidGtin)
	assert.Empty(t, env.store.lines)
}

func TestAddLine_PedidoEliminado_Rechazado(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{})
	require.NoError(t, err)
	require.NoError(t, env.orders.Delete(ctx, order.ID))

	_, err = env.lines.AddLine(ctx, order.ID, gtinA)
	assert.ErrorIs(t, err, domain.ErrOrderDeleted)
}

func TestUpdateLine_GtinInmutable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{Lines: []string{gtinA}})
	require.NoError(t, err)
	lineID := order.Lines[0].ID

	otro := gtinB
	_, err = env.lines.UpdateLine(ctx, order.ID, lineID, dto.UpdateLineRequest{Gtin: &otro})
	assert.ErrorIs(t, err, domain.ErrLineUpdateForbidden)

	// La línea no cambió.
	assert.Equal(t, gtinA, env.store.lines[lineID].Gtin)
}

func TestUpdateLine_OrderIDInmutable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{Lines: []string{gtinA}})
	require.NoError(t, err)
	otroPedido, err := env.orders.Create(ctx, dto.CreateOrderRequest{})
	require.NoError(t, err)

	_, err = env.lines.UpdateLine(ctx, order.ID, order.Lines[0].ID, dto.UpdateLineRequest{OrderID: &otroPedido.ID})
	assert.ErrorIs(t, err, domain.ErrLineUpdateForbidden)
}

func TestUpdateLine_SinCambios_DevuelveLinea(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{Lines: []string{gtinA}})
	require.NoError(t, err)

	// Repetir los valores actuales no es una mutación.
	mismo := gtinA
	out, err := env.lines.UpdateLine(ctx, order.ID, order.Lines[0].ID, dto.UpdateLineRequest{Gtin: &mismo})
	require.NoError(t, err)
	assert.Equal(t, gtinA, out.Gtin)
}

// ──────────────────────────────────────────────────────────────────────────────
// Eliminación de líneas (liberar la reserva)
// ──────────────────────────────────────────────────────────────────────────────

func TestDeleteLine_PedidoOpen_Rechazado(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{})
	require.NoError(t, err)
	_, err = env.orders.Process(ctx, order.ID) // sin líneas -> open
	require.NoError(t, err)

	line, err := env.lines.AddLine(ctx, order.ID, gtinA)
	require.NoError(t, err)

	err = env.lines.DeleteLine(ctx, order.ID, line.ID)
	assert.ErrorIs(t, err, domain.ErrLineDeleteNotAllowed)
	assert.Len(t, env.store.lines, 1, "la línea sigue existiendo")
}

func TestDeleteLine_PedidoFulfilled_Rechazado(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedLocation("loc-1", "Estantería A")

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{Lines: []string{gtinA}})
	require.NoError(t, err)
	inv, err := env.inventory.Register(ctx, "loc-1", gtinA)
	require.NoError(t, err)
	require.NoError(t, env.pairing.PairInventory(ctx, inv.ID))
	_, err = env.orders.Process(ctx, order.ID)
	require.NoError(t, err)

	err = env.lines.DeleteLine(ctx, order.ID, order.Lines[0].ID)
	assert.ErrorIs(t, err, domain.ErrLineDeleteNotAllowed)
}

func TestDeleteLine_Backorder_EliminaLineaYReserva(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{Lines: []string{gtinA}})
	require.NoError(t, err)
	_, err = env.orders.Process(ctx, order.ID) // -> backorder
	require.NoError(t, err)

	require.NoError(t, env.lines.DeleteLine(ctx, order.ID, order.Lines[0].ID))
	assert.Empty(t, env.store.lines)
	assert.Empty(t, env.store.reservations, "ninguna reserva queda huérfana")
	assert.Empty(t, env.jobs.byType(queue.JobPairInventory), "sin unidad liberada no hay re-emparejamiento")
}

func TestDeleteLine_ReservaCumplida_ReencolaLaUnidad(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedLocation("loc-1", "Estantería A")

	// Pedido en created (permite eliminar) con la línea ya emparejada.
	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{Lines: []string{gtinA}})
	require.NoError(t, err)
	inv, err := env.inventory.Register(ctx, "loc-1", gtinA)
	require.NoError(t, err)
	require.NoError(t, env.pairing.PairInventory(ctx, inv.ID))

	env.jobs.jobs = nil // solo interesan los trabajos del delete
	require.NoError(t, env.lines.DeleteLine(ctx, order.ID, order.Lines[0].ID))

	assert.Empty(t, env.store.reservations)
	freed := env.jobs.byType(queue.JobPairInventory)
	require.Len(t, freed, 1)
	assert.Equal(t, inv.ID, freed[0].InventoryID, "la unidad liberada vuelve a la cola de emparejamiento")
}

// ──────────────────────────────────────────────────────────────────────────────
// Reemplazo de líneas cumplidas
// ──────────────────────────────────────────────────────────────────────────────

func TestReplace_LineaSinCumplir_Rechazado(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{Lines: []string{gtinA}})
	require.NoError(t, err)

	_, err = env.lines.Replace(ctx, order.ID, order.Lines[0].ID)
	assert.ErrorIs(t, err, domain.ErrLineNotFulfilled)
}

func TestReplace_ConStock_EmparejaConOtraUnidad(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedLocation("loc-1", "Estantería A")

	// Pedido open con línea cumplida por la unidad A; la unidad B queda libre.
	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{})
	require.NoError(t, err)
	_, err = env.orders.Process(ctx, order.ID) // -> open
	require.NoError(t, err)
	oldLine, err := env.lines.AddLine(ctx, order.ID, gtinA)
	require.NoError(t, err)
	unitA, err := env.inventory.Register(ctx, "loc-1", gtinA)
	require.NoError(t, err)
	require.NoError(t, env.pairing.PairInventory(ctx, unitA.ID))
	unitB, err := env.inventory.Register(ctx, "loc-1", gtinA)
	require.NoError(t, err)

	newLine, err := env.lines.Replace(ctx, order.ID, oldLine.ID)
	require.NoError(t, err)

	// La línea nueva queda cumplida con la otra unidad, nunca con la retirada.
	assert.True(t, newLine.Fulfilled)
	require.NotNil(t, newLine.InventoryID)
	assert.Equal(t, unitB.ID, *newLine.InventoryID)

	// La original desapareció y su unidad fue retirada.
	assert.NotContains(t, env.store.lines, oldLine.ID)
	assert.NotNil(t, env.store.inventory[unitA.ID].RemovedAt)

	// El pedido pasó por hold y volvió a asentarse en fulfilled.
	assert.Equal(t, entity.OrderStatusFulfilled, env.store.orders[order.ID].Status)

	replaced := env.pub.byName(appevents.NameOrderLineReplaced)
	require.Len(t, replaced, 1)
	ev := replaced[0].(appevents.OrderLineReplaced)
	assert.Equal(t, unitA.ID, ev.Inventory.ID)
	assert.Equal(t, newLine.ID, ev.Line.ID)
}

func TestReplace_SinMasStock_DejaBackorder(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedLocation("loc-1", "Estantería A")

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{})
	require.NoError(t, err)
	_, err = env.orders.Process(ctx, order.ID) // -> open
	require.NoError(t, err)
	oldLine, err := env.lines.AddLine(ctx, order.ID, gtinA)
	require.NoError(t, err)
	unitA, err := env.inventory.Register(ctx, "loc-1", gtinA)
	require.NoError(t, err)
	require.NoError(t, env.pairing.PairInventory(ctx, unitA.ID))

	// Única unidad del gtin: el reemplazo la retira y no hay con qué emparejar.
	newLine, err := env.lines.Replace(ctx, order.ID, oldLine.ID)
	require.NoError(t, err)
	assert.False(t, newLine.Fulfilled)
	assert.Equal(t, entity.OrderStatusBackorder, env.store.orders[order.ID].Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ubicación de una línea cumplida
// ──────────────────────────────────────────────────────────────────────────────

func TestGetLineLocation_ResuelveElJoinCompleto(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	env.seedLocation("loc-1", "Estantería A")

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{Lines: []string{gtinA}})
	require.NoError(t, err)
	inv, err := env.inventory.Register(ctx, "loc-1", gtinA)
	require.NoError(t, err)
	require.NoError(t, env.pairing.PairInventory(ctx, inv.ID))

	loc, err := env.lines.GetLineLocation(ctx, order.ID, order.Lines[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "loc-1", loc.ID)
	assert.Equal(t, "Estantería A", loc.Name)
}

func TestGetLineLocation_SinCumplir_NotFound(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	order, err := env.orders.Create(ctx, dto.CreateOrderRequest{Lines: []string{gtinA}})
	require.NoError(t, err)

	_, err = env.lines.GetLineLocation(ctx, order.ID, order.Lines[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
