// ==============================================
// File: internal/issuance/instructions.go
// ==============================================
package issuance

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/rovshanmuradov/edition-mint/internal/curve"
	"github.com/rovshanmuradov/edition-mint/internal/mint"
)

// TokenMetadataProgramID is the Metaplex token metadata program.
var TokenMetadataProgramID = solana.MustPublicKeyFromBase58("metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s")

// MintEditionDiscriminator is the instruction discriminator for minting
// one edition against the curve program.
var MintEditionDiscriminator = []byte{0x9b, 0x1c, 0x3f, 0x6e, 0x02, 0xd4, 0x51, 0x88}

// BuildMintEditionInstruction builds the instruction that mints exactly
// one unit of editionMint to the buyer's token account, signed by the
// curve credential. Account order is fixed by the on-chain program.
func BuildMintEditionInstruction(
	cred curve.Credential,
	collectionMint solana.PublicKey,
	editionMint solana.PublicKey,
	buyer solana.PublicKey,
	buyerATA solana.PublicKey,
	meta mint.EditionMetadata,
) solana.Instruction {
	data := make([]byte, len(MintEditionDiscriminator))
	copy(data, MintEditionDiscriminator)
	data = appendString(data, meta.Name)
	data = appendString(data, meta.Symbol)
	data = appendString(data, meta.URI)
	feeBytes := make([]byte, 2)
	binary.LittleEndian.PutUint16(feeBytes, meta.SellerFeeBasisPoints)
	data = append(data, feeBytes...)

	metadataAccount := metadataAddress(editionMint)
	masterEdition := masterEditionAddress(editionMint)

	// Account list must be in the exact order expected by the program
	insAccounts := []*solana.AccountMeta{
		{PublicKey: cred.Address, IsSigner: false, IsWritable: true},
		{PublicKey: editionMint, IsSigner: false, IsWritable: true},
		{PublicKey: buyerATA, IsSigner: false, IsWritable: true},
		{PublicKey: metadataAccount, IsSigner: false, IsWritable: true},
		{PublicKey: masterEdition, IsSigner: false, IsWritable: true},
		{PublicKey: collectionMint, IsSigner: false, IsWritable: false},
		{PublicKey: buyer, IsSigner: true, IsWritable: true},
		{PublicKey: solana.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.TokenProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: TokenMetadataProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: solana.SysVarRentPubkey, IsSigner: false, IsWritable: false},
	}

	return solana.NewInstruction(curve.ProgramID, insAccounts, data)
}

// appendString serializes a length-prefixed UTF-8 string (u32 LE).
func appendString(data []byte, s string) []byte {
	lenBytes := make([]byte, 4)
	binary.LittleEndian.PutUint32(lenBytes, uint32(len(s)))
	data = append(data, lenBytes...)
	return append(data, []byte(s)...)
}

// metadataAddress derives the Metaplex metadata PDA for a mint.
func metadataAddress(editionMint solana.PublicKey) solana.PublicKey {
	addr, _, _ := solana.FindProgramAddress(
		[][]byte{[]byte("metadata"), TokenMetadataProgramID.Bytes(), editionMint.Bytes()},
		TokenMetadataProgramID,
	)
	return addr
}

// masterEditionAddress derives the Metaplex master edition PDA for a mint.
func masterEditionAddress(editionMint solana.PublicKey) solana.PublicKey {
	addr, _, _ := solana.FindProgramAddress(
		[][]byte{[]byte("metadata"), TokenMetadataProgramID.Bytes(), editionMint.Bytes(), []byte("edition")},
		TokenMetadataProgramID,
	)
	return addr
}
